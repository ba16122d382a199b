package dto

type NotificationFilter struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
