package dto

import "github.com/shopspring/decimal"

// DeductionDTO descuento confirmado en una ubicación.
type DeductionDTO struct {
	PartitionID      string `json:"partition_id"`
	RecordID         string `json:"record_id"`
	Location         string `json:"location"`
	Shape            string `json:"shape"`
	Amount           int    `json:"amount"`
	PreviousQuantity int    `json:"previous_quantity"`
	NewQuantity      int    `json:"new_quantity"`
}

// RestockDTO solicitud de reposición emitida durante la salida.
type RestockDTO struct {
	ID                     string `json:"id"`
	ProductID              string `json:"product_id"`
	VariantID              string `json:"variant_id,omitempty"`
	CurrentQuantity        int    `json:"current_quantity"`
	RestockLevel           int    `json:"restock_level"`
	SuggestedOrderQuantity int    `json:"suggested_order_quantity"`
	Priority               string `json:"priority"`
	Location               string `json:"location"`
}

// ItemResultDTO resultado por renglón.
type ItemResultDTO struct {
	Index      int             `json:"index"`
	ProductID  string          `json:"product_id"`
	VariantID  string          `json:"variant_id,omitempty"`
	Name       string          `json:"name"`
	Requested  int             `json:"requested"`
	Released   int             `json:"released"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Strategy   string          `json:"strategy,omitempty"`
	Deductions []DeductionDTO  `json:"deductions,omitempty"`
	Restocks   []RestockDTO    `json:"restocks,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ReleaseResponse respuesta de POST /api/releases/:id/release. En abortos viaja dentro de
// ReleaseErrorResponse con los renglones ya aplicados.
type ReleaseResponse struct {
	ReleaseID    string          `json:"release_id"`
	Phase        string          `json:"phase"`
	Succeeded    []ItemResultDTO `json:"succeeded"`
	Failed       []ItemResultDTO `json:"failed,omitempty"`
	NotAttempted []ItemResultDTO `json:"not_attempted,omitempty"`
	Committed    bool            `json:"committed"`
}

// StockErrorDetail detalle operativo de un error de inventario.
type StockErrorDetail struct {
	ProductID string           `json:"product_id,omitempty"`
	VariantID string           `json:"variant_id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Requested int              `json:"requested,omitempty"`
	Available int              `json:"available"`
	Shortfall int              `json:"shortfall,omitempty"`
	Locations []LocationQtyDTO `json:"locations,omitempty"`
	Checked   []string         `json:"checked,omitempty"`
}

// LocationQtyDTO cantidad observada por ubicación.
type LocationQtyDTO struct {
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable (OUT_OF_STOCK, CONFLICT, ...);
// Message es el texto para el operador.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReleaseErrorResponse error de salida con el detalle de inventario y el resultado parcial.
type ReleaseErrorResponse struct {
	ErrorResponse
	Detail *StockErrorDetail `json:"detail,omitempty"`
	Result *ReleaseResponse  `json:"result,omitempty"`
}

// LocateRequest query de GET /api/stock/locate.
type LocateRequest struct {
	ProductID string `query:"product_id"`
	VariantID string `query:"variant_id"`
	Name      string `query:"name"`
	Category  string `query:"category"`
	Location  string `query:"location"`
	Partition string `query:"partition"`
	Quotation bool   `query:"quotation"`
}

// HandleDTO ubicación candidata devuelta por el resolver.
type HandleDTO struct {
	PartitionID string `json:"partition_id"`
	RecordID    string `json:"record_id"`
	Shape       string `json:"shape"`
	VariantID   string `json:"variant_id,omitempty"`
	Quantity    int    `json:"quantity"`
	Location    string `json:"location"`
}

// LocateResponse resultado de la localización.
type LocateResponse struct {
	Strategy   string      `json:"strategy,omitempty"`
	Total      int         `json:"total"`
	Handles    []HandleDTO `json:"handles"`
	Checked    []string    `json:"checked"`
	Mismatches []string    `json:"mismatches,omitempty"`
}
