package post

// PostRequest is the body of create and update.
type PostRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}
