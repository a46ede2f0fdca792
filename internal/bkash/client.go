// Package bkash реализует клиент платёжного шлюза bKash (tokenized checkout).
//
// Клиент скрывает жизненный цикл токена авторизации: токен кешируется и
// обновляется по истечении срока действия, вызывающий код работает только
// с операциями создания, исполнения и запроса статуса платёжной сессии.
package bkash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Ошибки клиента по видам операций. Каждая оборачивается с телом ответа шлюза.
var (
	ErrAuthFailed    = errors.New("bkash: token grant failed")
	ErrCreateFailed  = errors.New("bkash: create payment failed")
	ErrExecuteFailed = errors.New("bkash: execute payment failed")
	ErrQueryFailed   = errors.New("bkash: query payment failed")
)

// Шлюз не возвращает надёжный срок жизни токена, поэтому используется
// консервативное фиксированное окно.
const tokenValidity = 50 * time.Minute

// Config — реквизиты и параметры подключения к шлюзу.
type Config struct {
	BaseURL     string
	AppKey      string
	AppSecret   string
	Username    string
	Password    string
	CallbackURL string
	Currency    string
	Timeout     time.Duration
}

// Client — клиент шлюза с кешированным токеном авторизации.
//
// Кеш токена защищён мьютексом: обновление сериализуется, два конкурентных
// запроса с истёкшим токеном не выполняют двойной grant.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient создаёт новый клиент bKash.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// getToken возвращает кешированный токен или запрашивает новый у шлюза.
func (c *Client) getToken(ctx context.Context) (string, error) {
	const op = "bkash.getToken"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(GrantTokenRequest{
		AppKey:    c.cfg.AppKey,
		AppSecret: c.cfg.AppSecret,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/tokenized/checkout/token/grant", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("username", c.cfg.Username)
	req.Header.Set("password", c.cfg.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrAuthFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%s: %w: %s", op, ErrAuthFailed, string(raw))
	}

	var grant GrantTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrAuthFailed, err)
	}

	c.token = grant.IDToken
	c.tokenExpiry = time.Now().Add(tokenValidity)
	return c.token, nil
}

// newSessionRequest формирует авторизованный запрос к операции шлюза.
func (c *Client) newSessionRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("authorization", token)
	req.Header.Set("x-app-key", c.cfg.AppKey)
	return req, nil
}

// CreateSession открывает платёжную сессию на указанную сумму.
//
// Сумма передаётся строкой с двумя знаками после запятой, чтобы исключить
// неоднозначность представления чисел с плавающей точкой на проводе.
// Invoice reference используется и как payerReference, и как merchantInvoiceNumber.
func (c *Client) CreateSession(ctx context.Context, amount float64, invoiceRef, intent string) (*Session, error) {
	const op = "bkash.CreateSession"

	req, err := c.newSessionRequest(ctx, "/tokenized/checkout/create", CreateSessionRequest{
		Mode:                  "0011",
		PayerReference:        invoiceRef,
		CallbackURL:           c.cfg.CallbackURL,
		Amount:                fmt.Sprintf("%.2f", amount),
		Currency:              c.cfg.Currency,
		Intent:                intent,
		MerchantInvoiceNumber: invoiceRef,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var session Session
	if err := c.do(req, ErrCreateFailed, &session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &session, nil
}

// ExecuteSession исполняет ранее созданную платёжную сессию.
func (c *Client) ExecuteSession(ctx context.Context, paymentID string) (*Result, error) {
	const op = "bkash.ExecuteSession"

	req, err := c.newSessionRequest(ctx, "/tokenized/checkout/execute", SessionReference{PaymentID: paymentID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result Result
	if err := c.do(req, ErrExecuteFailed, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// QuerySession запрашивает статус платёжной сессии, не изменяя её.
func (c *Client) QuerySession(ctx context.Context, paymentID string) (*Result, error) {
	const op = "bkash.QuerySession"

	req, err := c.newSessionRequest(ctx, "/tokenized/checkout/payment/status", SessionReference{PaymentID: paymentID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result Result
	if err := c.do(req, ErrQueryFailed, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// do выполняет запрос единственной попыткой без повторов: политика ретраев
// принадлежит вызывающему коду.
func (c *Client) do(req *http.Request, kind error, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", kind, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return nil
}
