package response

// Response общий конверт всех ответов API: {success, data}
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorData содержимое data для неуспешного ответа
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Name    string `json:"name,omitempty"` // имя конфликтующей галереи для need-confirm
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

func ErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	}
}

func NeedConfirmResponse(name string) Response {
	return Response{
		Success: false,
		Data: ErrorData{
			Code:    CodeNeedConfirm,
			Message: MessageNeedConfirm,
			Name:    name,
		},
	}
}
