package supplier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	pkgerrors "github.com/pkg/errors"
)

const (
	TokenHeader    = "rk-api-token"
	DefaultTimeout = 15 * time.Second
	// maxBodySize ограничивает сохраняемый ответ поставщика.
	maxBodySize = 64 << 10
)

// HTTPClient отправляет заказы поставщику пакетов. Реализует service.Forwarder.
type HTTPClient struct {
	url        string
	token      string
	encoder    Encoder
	httpClient *http.Client
}

func New(url, token string, encoder Encoder, timeout time.Duration) *HTTPClient {
	if encoder == nil {
		encoder = FormEncoder{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		url:        url,
		token:      token,
		encoder:    encoder,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forward отправляет заказ. Ответ 2xx считается успехом, иначе RejectedError. Сетевые ошибки и таймаут
// возвращаются как UnreachableError. Ошибки маппинга (ErrUnmappedProduct, ErrUnparsableVolume) возвращаются
// до обращения к поставщику.
//
//nolint:nonamedreturns
func (c *HTTPClient) Forward(ctx context.Context, order domain.Order) (response *domain.SupplierResponse, err error) {
	payload, err := payloadFor(order)
	if err != nil {
		return nil, err
	}

	body, err := c.encoder.Encode(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encode payload")
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if reqErr != nil {
		return nil, pkgerrors.Wrap(reqErr, "create request")
	}
	req.Header.Set("Content-Type", c.encoder.ContentType())
	req.Header.Set(TokenHeader, c.token)

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, NewUnreachableError(pkgerrors.Wrapf(doErr, "order %s", order.OrderNumber))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if readErr != nil {
		return nil, NewUnreachableError(pkgerrors.Wrap(readErr, "read response"))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, NewRejectedError(resp.StatusCode, string(raw))
	}

	return &domain.SupplierResponse{StatusCode: resp.StatusCode, Body: string(raw)}, nil
}

func payloadFor(order domain.Order) (Payload, error) {
	product, err := ProductCode(domain.Provider(order.Type))
	if err != nil {
		return Payload{}, err
	}
	size, err := PackageSizeMB(order.Details)
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		Recipient:   order.RecipientValue(),
		PackageSize: size,
		Product:     product,
	}, nil
}
