package dto

// CredentialsRequest は上流アクセストークン差し替えのリクエストDTOです。
type CredentialsRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}
