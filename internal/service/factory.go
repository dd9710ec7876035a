package service

import (
	"fmt"

	"github.com/fsdevblog/groph-bundles/pkg/uow"
)

type AppServices struct {
	OrderService       *OrderService
	WalletService      *WalletService
	FulfillmentService *FulfillmentService
}

func Factory(unitOfWork uow.UOW, forwarder Forwarder, notifier Notifier, settings Settings) (*AppServices, error) {
	orderService, orderServiceErr := NewOrderService(unitOfWork, settings)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	walletService, walletServiceErr := NewWalletService(unitOfWork)
	if walletServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", walletServiceErr.Error())
	}

	fulfillmentService, fulfillmentServiceErr := NewFulfillmentService(unitOfWork, forwarder, notifier, settings)
	if fulfillmentServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", fulfillmentServiceErr.Error())
	}

	return &AppServices{
		OrderService:       orderService,
		WalletService:      walletService,
		FulfillmentService: fulfillmentService,
	}, nil
}
