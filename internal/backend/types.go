package backend

// Wire types for the order-management backend. Field names follow the
// backend's JSON contract; this service never invents its own shapes.

type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

type ProductCreate struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

type Customer struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type CustomerCreate struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// ValidStatus reports whether s is one of the statuses the backend accepts.
// The list is fixed by the backend; it is checked locally so a bad value
// never leaves this service.
func ValidStatus(s string) bool {
	switch OrderStatus(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type OrderLine struct {
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// OrderCreate is the submission payload for POST /orders.
type OrderCreate struct {
	CustomerID      int         `json:"customerId"`
	ShippingAddress string      `json:"shippingAddress"`
	LineItems       []OrderLine `json:"lineItems"`
}

// SubmitResult is the backend's answer to a successful order submission.
type SubmitResult struct {
	OrderID         int    `json:"orderId"`
	ProcessedByNode string `json:"processedByNode"`
}

type OrderSummary struct {
	ID              int     `json:"id"`
	CustomerName    string  `json:"customerName"`
	Status          string  `json:"status"`
	Total           float64 `json:"total"`
	ProcessedByNode string  `json:"processedByNode"`
	CreatedAt       string  `json:"createdAt"`
}

type OrderDetailLine struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
}

type OrderDetail struct {
	ID              int               `json:"id"`
	CustomerName    string            `json:"customerName"`
	ShippingAddress string            `json:"shippingAddress"`
	Status          string            `json:"status"`
	Total           float64           `json:"total"`
	ProcessedByNode string            `json:"processedByNode"`
	CreatedAt       string            `json:"createdAt"`
	LineItems       []OrderDetailLine `json:"lineItems"`
}

// ReplicaStatus describes one replica node as seen from the backend's probe.
// State is "active", "inactive" or "error".
type ReplicaStatus struct {
	URL   string `json:"url"`
	Node  string `json:"node,omitempty"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

const ReplicaActive = "active"

// ClusterProbe is the result of GET /health/replicas.
type ClusterProbe struct {
	CurrentNode string          `json:"currentNode"`
	Replicas    []ReplicaStatus `json:"replicas"`
}

type NodeHealth struct {
	Node  string `json:"node"`
	State string `json:"state"`
	Port  int    `json:"port,omitempty"`
}

type ReplicationResult struct {
	Node   string `json:"node"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReplicationRun reports a manually triggered replication pass.
type ReplicationRun struct {
	LogsReplicated int                 `json:"logsReplicated"`
	Results        []ReplicationResult `json:"results"`
}

type ReplicationLog struct {
	ID        int    `json:"id"`
	Table     string `json:"table"`
	Operation string `json:"operation"`
	RecordID  int    `json:"recordId"`
	CreatedAt string `json:"createdAt"`
}
