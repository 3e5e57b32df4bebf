package course

// CourseForm is the multipart body of create and update. The thumbnail file
// travels in the "thumbnail" part and is handled separately.
type CourseForm struct {
	Name        string   `form:"name" json:"name" binding:"required,max=255"`
	Description string   `form:"description" json:"description"`
	Price       *float64 `form:"price" json:"price" binding:"required,gte=0"`
}
