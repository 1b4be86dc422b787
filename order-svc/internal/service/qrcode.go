package service

import (
	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

// PickupQRGenerator encodes the order detail link a courier scans at pickup.
type PickupQRGenerator struct {
	BaseURL string
}

func (g PickupQRGenerator) Generate(orderID string) ([]byte, error) {
	return qrcode.Encode(g.BaseURL+"/orders/detail/"+orderID, qrcode.Medium, 256)
}
