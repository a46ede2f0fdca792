package bkash

// GrantTokenRequest — тело запроса на выдачу токена.
type GrantTokenRequest struct {
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
}

// GrantTokenResponse — ответ шлюза на запрос токена.
// ExpiresIn шлюз возвращает не всегда, поэтому срок жизни токена
// считается локально консервативным фиксированным окном.
type GrantTokenResponse struct {
	IDToken      string `json:"id_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// CreateSessionRequest — тело запроса на создание платёжной сессии.
type CreateSessionRequest struct {
	Mode                  string `json:"mode"`
	PayerReference        string `json:"payerReference"`
	CallbackURL           string `json:"callbackURL"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	Intent                string `json:"intent"`
	MerchantInvoiceNumber string `json:"merchantInvoiceNumber"`
}

// Session — платёжная сессия, открытая шлюзом.
type Session struct {
	PaymentID string `json:"paymentID"`
	BkashURL  string `json:"bkashURL"`
}

// SessionReference — тело запроса исполнения и запроса статуса сессии.
type SessionReference struct {
	PaymentID string `json:"paymentID"`
}

// Result — результат исполнения или запроса статуса сессии.
// StatusCode "0000" означает успешное завершение на стороне шлюза.
type Result struct {
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	PaymentID     string `json:"paymentID"`
	TrxID         string `json:"trxID"`
}

// StatusCodeSuccess — бизнес-код успешного платежа у шлюза.
const StatusCodeSuccess = "0000"

// StatusCodePending — бизнес-код незавершённого платежа у шлюза.
const StatusCodePending = "2001"
