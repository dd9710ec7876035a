package supplier

import (
	"fmt"
	"regexp"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/shopspring/decimal"
)

var productCodes = map[domain.Provider]string{
	domain.ProviderMTN:        "mtn",
	domain.ProviderTelecel:    "telecel",
	domain.ProviderAirtelTigo: "at_bigtime",
}

var volumeNumber = regexp.MustCompile(`\d+(\.\d+)?`)

var mbPerGB = decimal.NewFromInt(1000)

// ProductCode код продукта поставщика для провайдера.
func ProductCode(provider domain.Provider) (string, error) {
	code, ok := productCodes[provider]
	if !ok {
		return "", fmt.Errorf("%q: %w", provider, ErrUnmappedProduct)
	}
	return code, nil
}

// PackageSizeMB переводит объем пакета ("5GB", "1.5 GB") в мегабайты. Берется первое число в строке,
// единицы измерения всегда считаются гигабайтами.
func PackageSizeMB(details string) (string, error) {
	match := volumeNumber.FindString(details)
	if match == "" {
		return "", fmt.Errorf("%q: %w", details, ErrUnparsableVolume)
	}
	gb, err := decimal.NewFromString(match)
	if err != nil {
		return "", fmt.Errorf("%q: %w", details, ErrUnparsableVolume)
	}
	return gb.Mul(mbPerGB).String(), nil
}
