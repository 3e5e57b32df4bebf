package comment

// CommentRequest is the body of create and update.
type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}
