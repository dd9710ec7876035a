package supplier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Payload поля запроса на отправку пакета.
type Payload struct {
	Recipient   string `json:"recipient"`
	PackageSize string `json:"package_size"`
	Product     string `json:"product"`
}

// Encoder сериализует Payload в тело запроса.
type Encoder interface {
	ContentType() string
	Encode(p Payload) (io.Reader, error)
}

type FormEncoder struct{}

func (FormEncoder) ContentType() string {
	return "application/x-www-form-urlencoded"
}

func (FormEncoder) Encode(p Payload) (io.Reader, error) {
	values := url.Values{}
	values.Set("recipient", p.Recipient)
	values.Set("package_size", p.PackageSize)
	values.Set("product", p.Product)
	return strings.NewReader(values.Encode()), nil
}

type JSONEncoder struct{}

func (JSONEncoder) ContentType() string {
	return "application/json"
}

func (JSONEncoder) Encode(p Payload) (io.Reader, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return bytes.NewReader(body), nil
}

// EncoderByName возвращает энкодер по имени из конфигурации: "form" (по умолчанию) или "json".
func EncoderByName(name string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "form":
		return FormEncoder{}, nil
	case "json":
		return JSONEncoder{}, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownEncoding)
}
