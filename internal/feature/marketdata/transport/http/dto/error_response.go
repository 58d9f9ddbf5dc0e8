package dto

// ErrorResponse はエラーレスポンスの共通DTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は処理結果メッセージの共通DTOです。
type MessageResponse struct {
	Message string `json:"message"`
}
