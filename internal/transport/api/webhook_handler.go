package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fsdevblog/groph-bundles/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	SignatureHeader = "x-paystack-signature"

	EventChargeSuccess = "charge.success"
	ActionWalletTopUp  = "wallet_top_up"

	maxWebhookBody = 1 << 20
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidUserID    = errors.New("invalid metadata user_id")
)

// flexibleID id пользователя в metadata приходит и числом, и строкой.
type flexibleID int64

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return ErrInvalidUserID
	}
	*f = flexibleID(id)
	return nil
}

type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		// Amount в минимальных единицах валюты.
		Amount   int64 `json:"amount"`
		Metadata struct {
			Action string     `json:"action"`
			UserID flexibleID `json:"user_id"`
		} `json:"metadata"`
	} `json:"data"`
}

type WebhookHandler struct {
	svs    WalletServicer
	secret []byte
}

func NewWebhookHandler(svs WalletServicer, secret []byte) *WebhookHandler {
	return &WebhookHandler{
		svs:    svs,
		secret: secret,
	}
}

// Payment POST RouteGroup + PaymentWebhookRoute. Уведомление платежного шлюза.
//
// Алгоритм работы:
//  1. Проверяет подпись: HMAC-SHA512 сырого тела запроса в заголовке SignatureHeader.
//  2. События кроме успешного платежа за пополнение кошелька подтверждаются и игнорируются.
//  3. Зачисляет сумму (amount / 100). Повторное уведомление с той же ссылкой ничего не зачисляет.
func (w *WebhookHandler) Payment(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypeBind)
		return
	}

	if !w.validSignature(body, c.GetHeader(SignatureHeader)) {
		_ = c.AbortWithError(http.StatusUnauthorized, ErrInvalidSignature).SetType(gin.ErrorTypePublic)
		return
	}

	var event WebhookEvent
	if jsonErr := json.Unmarshal(body, &event); jsonErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, jsonErr).SetType(gin.ErrorTypeBind)
		return
	}

	if event.Event != EventChargeSuccess || event.Data.Metadata.Action != ActionWalletTopUp {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := w.svs.CreditTopUp(reqCtx, service.TopUpArgs{
		UserID:    int64(event.Data.Metadata.UserID),
		Amount:    decimal.New(event.Data.Amount, -2), //nolint:mnd
		Reference: event.Data.Reference,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "credited",
		"balance": result.Balance,
	})
}

func (w *WebhookHandler) validSignature(body []byte, signature string) bool {
	if len(w.secret) == 0 || signature == "" {
		return false
	}
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, w.secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expected)
}

// SignPayload подпись тела запроса в формате шлюза.
func SignPayload(body, secret []byte) string {
	mac := hmac.New(sha512.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
