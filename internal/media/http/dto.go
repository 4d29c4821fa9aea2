package http

// PhotoUploadResponse points at the stored renditions after an upload.
type PhotoUploadResponse struct {
	Message      string `json:"message"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func photoURL(vendorID string) string {
	return "/v1/vendors/" + vendorID + "/photo"
}

func thumbnailURL(vendorID string) string {
	return photoURL(vendorID) + "/thumbnail"
}
