package domain

// Product is a backend-owned inventory entry. The client never mutates one
// directly, only through submission requests.
type Product struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Unit        string  `json:"unit"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	TotalValue  float64 `json:"total_value,omitempty"`
}

// SaleItem is one line of a recorded sale.
type SaleItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// Sale is one entry of the sales history.
type Sale struct {
	ID          int64      `json:"id"`
	Date        string     `json:"date"`
	Items       []SaleItem `json:"items"`
	TotalAmount float64    `json:"total_amount"`
}

// SaleReceipt is the backend's acknowledgement of a confirmed sale.
type SaleReceipt struct {
	TotalAmount float64 `json:"total_amount"`
}

// LowStockThreshold marks products the UI should flag as running out.
const LowStockThreshold = 5

// ProductView decorates a product with display-only attributes.
type ProductView struct {
	Product
	LowStock bool `json:"low_stock"`
}

// InventoryStats are the header figures of the product list.
type InventoryStats struct {
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// ProductListing is the view model of the product list screen.
type ProductListing struct {
	Products []ProductView  `json:"products"`
	Stats    InventoryStats `json:"stats"`
}

// NewProductListing maps a fetched product list to its view model.
func NewProductListing(products []Product) ProductListing {
	listing := ProductListing{Products: make([]ProductView, 0, len(products))}
	for _, p := range products {
		listing.Products = append(listing.Products, ProductView{
			Product:  p,
			LowStock: p.Quantity < LowStockThreshold,
		})
		listing.Stats.Count++
		listing.Stats.TotalValue += p.Price * float64(p.Quantity)
	}
	return listing
}
