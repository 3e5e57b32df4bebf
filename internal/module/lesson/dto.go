package lesson

// UploadLessonForm is the multipart body of upload-video-from-client. The
// video travels in the "videoFile" part.
type UploadLessonForm struct {
	CourseID    uint   `form:"course_id" json:"course_id" binding:"required,gt=0"`
	Title       string `form:"title" json:"title" binding:"required,max=255"`
	Description string `form:"description" json:"description"`
}

// YoutubeLessonRequest is the JSON body of link-video-youtube.
type YoutubeLessonRequest struct {
	CourseID     uint   `json:"course_id" binding:"required,gt=0"`
	Title        string `json:"title" binding:"required,max=255"`
	Description  string `json:"description"`
	VideoYoutube string `json:"video_youtube" binding:"required,url"`
}

// UpdateLessonForm is the multipart body of PUT /lessons/:id. A zero course
// id keeps the current course; a video file or a YouTube link, when given,
// replaces whatever video the lesson had.
type UpdateLessonForm struct {
	CourseID     uint   `form:"course_id" json:"course_id"`
	Title        string `form:"title" json:"title" binding:"required,max=255"`
	Description  string `form:"description" json:"description"`
	VideoYoutube string `form:"video_youtube" json:"video_youtube" binding:"omitempty,url"`
}
