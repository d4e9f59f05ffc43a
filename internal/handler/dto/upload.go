package dto

// UploadByLinkRequest represents the body of POST /uploadbylink.
type UploadByLinkRequest struct {
	Link string `json:"link"`
}

// UploadByLinkResponse reports the stored name of a downloaded image.
type UploadByLinkResponse struct {
	Success   bool   `json:"success"`
	ImageName string `json:"imageName"`
}
