package worker

import (
	"github.com/coinbox/coinbox-mod-sales/internal/service"
)

// StartReceiptWorker registers receipt handlers.
func StartReceiptWorker(receiptService *service.ReceiptService) {
	if receiptService == nil {
		return
	}
	receiptService.RegisterHandlers()
}
