package dairyapi

// ProductTypeDetail adalah referensi katalog yang di-embed upstream ke
// stock batch dan order line item. Bisa null untuk data lama.
type ProductTypeDetail struct {
	ID          int     `json:"id"`
	ProductName string  `json:"productName"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
}

// Status batch dari API stok. Hanya "available" yang boleh dijual.
const (
	StockAvailable     = "available"
	StockExpired       = "expired"
	StockContamination = "contamination"
	StockSoldOut       = "sold_out"
)

type StockBatch struct {
	ID                int                `json:"id"`
	ProductType       int                `json:"productType"`
	Quantity          FlexInt            `json:"quantity"`
	Status            string             `json:"status"`
	ProductTypeDetail *ProductTypeDetail `json:"productTypeDetail"`
}

// RawOrderItem is a line item as the upstream returns it: possibly
// duplicated per product type, detail possibly null.
type RawOrderItem struct {
	ProductTypeDetail *ProductTypeDetail `json:"productTypeDetail"`
	Quantity          FlexInt            `json:"quantity"`
}

type Order struct {
	ID            int            `json:"id"`
	CustomerName  string         `json:"customerName"`
	Email         *string        `json:"email"`
	PhoneNumber   *string        `json:"phoneNumber"`
	Location      string         `json:"location"`
	Status        string         `json:"status"`
	PaymentMethod *string        `json:"paymentMethod"`
	ShippingCost  float64        `json:"shippingCost"`
	Notes         *string        `json:"notes"`
	OrderItems    []RawOrderItem `json:"orderItems"`
}

// PayloadItem is what we send back on create/update: denormalized display
// fields stripped, only the key and the quantity.
type PayloadItem struct {
	ProductType int `json:"productType"`
	Quantity    int `json:"quantity"`
}

type OrderPayload struct {
	CustomerName  string        `json:"customerName"`
	Email         *string       `json:"email"`
	PhoneNumber   *string       `json:"phoneNumber"`
	Location      string        `json:"location"`
	Status        string        `json:"status"`
	PaymentMethod *string       `json:"paymentMethod"`
	ShippingCost  float64       `json:"shippingCost"`
	OrderItems    []PayloadItem `json:"orderItems"`
	Notes         *string       `json:"notes"`
}
