package progress

// RecordRequest is the body of PUT /progress/lessons/:id.
type RecordRequest struct {
	Percent *int `json:"percent" binding:"required,min=0,max=100"`
}
