package service

import (
	"log"

	"github.com/hirestack/hirestack-backend/internal/model"

	"github.com/meilisearch/meilisearch-go"
)

// SearchService keeps the job index in sync. Querying the index is done by
// clients directly against Meilisearch; the backend only writes to it.
type SearchService interface {
	IndexJob(job *model.Job) error
	DeleteJob(id string) error
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"company_id", "location"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index("jobs").UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update jobs filterable attributes: %v", err)
	}
}

func (s *searchService) IndexJob(job *model.Job) error {
	doc := map[string]any{
		"id":          job.ID.String(),
		"company_id":  job.CompanyID.String(),
		"title":       job.Title,
		"description": job.Description,
		"location":    job.Location,
		"created_at":  job.CreatedAt.Unix(),
	}

	_, err := s.client.Index("jobs").AddDocuments([]map[string]any{doc}, nil)
	return err
}

func (s *searchService) DeleteJob(id string) error {
	_, err := s.client.Index("jobs").DeleteDocument(id)
	return err
}
