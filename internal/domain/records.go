package domain

import "time"

const (
	RepairStatusPending   = "Pending"
	RepairStatusCompleted = "Completed"
)

const (
	DeliveryStatusPending   = "Pending"
	DeliveryStatusInTransit = "In Transit"
	DeliveryStatusDelivered = "Delivered"
	DeliveryStatusCancelled = "Cancelled"
)

const (
	HireStatusActive    = "Active"
	HireStatusCompleted = "Completed"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

const ReloadStatusCompleted = "Completed"

const NotificationTypeInfo = "Info"

type Repair struct {
	ID               string    `json:"_id" bson:"_id"`
	CustomerName     string    `json:"customerName" bson:"customerName"`
	CustomerPhone    string    `json:"customerPhone,omitempty" bson:"customerPhone,omitempty"`
	CustomerAddress  string    `json:"customerAddress,omitempty" bson:"customerAddress,omitempty"`
	DeviceModel      string    `json:"deviceModel" bson:"deviceModel"`
	IMEI             string    `json:"imei,omitempty" bson:"imei,omitempty"`
	IssueDescription string    `json:"issueDescription,omitempty" bson:"issueDescription,omitempty"`
	Status           string    `json:"status" bson:"status"`
	EstimatedCost    float64   `json:"estimatedCost" bson:"estimatedCost"`
	TechnicianNotes  string    `json:"technicianNotes,omitempty" bson:"technicianNotes,omitempty"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}

type RepairCreateRequest struct {
	CustomerName     string  `json:"customerName"`
	CustomerPhone    string  `json:"customerPhone"`
	CustomerAddress  string  `json:"customerAddress"`
	DeviceModel      string  `json:"deviceModel"`
	IMEI             string  `json:"imei"`
	IssueDescription string  `json:"issueDescription"`
	Status           string  `json:"status"`
	EstimatedCost    float64 `json:"estimatedCost" validate:"gte=0"`
	TechnicianNotes  string  `json:"technicianNotes"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

type DeliveryItem struct {
	ProductName string `json:"productName" bson:"productName"`
	Quantity    int    `json:"quantity" bson:"quantity"`
}

type Delivery struct {
	ID              string         `json:"_id" bson:"_id"`
	CustomerName    string         `json:"customerName" bson:"customerName"`
	CustomerPhone   string         `json:"customerPhone,omitempty" bson:"customerPhone,omitempty"`
	CustomerAddress string         `json:"customerAddress" bson:"customerAddress"`
	Items           []DeliveryItem `json:"items" bson:"items"`
	TotalAmount     float64        `json:"totalAmount" bson:"totalAmount"`
	Status          string         `json:"status" bson:"status"`
	TrackingNumber  string         `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	DeliveryDate    *time.Time     `json:"deliveryDate,omitempty" bson:"deliveryDate,omitempty"`
	Notes           string         `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updatedAt"`
}

type DeliveryCreateRequest struct {
	CustomerName    string         `json:"customerName" validate:"required"`
	CustomerPhone   string         `json:"customerPhone"`
	CustomerAddress string         `json:"customerAddress" validate:"required"`
	Items           []DeliveryItem `json:"items"`
	TotalAmount     float64        `json:"totalAmount" validate:"gte=0"`
	Status          string         `json:"status" validate:"omitempty,oneof=Pending 'In Transit' Delivered Cancelled"`
	TrackingNumber  string         `json:"trackingNumber"`
	DeliveryDate    *time.Time     `json:"deliveryDate"`
	Notes           string         `json:"notes"`
}

type Installment struct {
	ID     string    `json:"_id" bson:"_id"`
	Date   time.Time `json:"date" bson:"date"`
	Amount float64   `json:"amount" bson:"amount"`
	Paid   bool      `json:"paid" bson:"paid"`
}

type HirePurchase struct {
	ID           string        `json:"_id" bson:"_id"`
	CustomerName string        `json:"customerName" bson:"customerName"`
	CustomerNIC  string        `json:"customerNic,omitempty" bson:"customerNic,omitempty"`
	ProductName  string        `json:"productName" bson:"productName"`
	TotalAmount  float64       `json:"totalAmount" bson:"totalAmount"`
	DownPayment  float64       `json:"downPayment" bson:"downPayment"`
	Installments []Installment `json:"installments" bson:"installments"`
	Status       string        `json:"status" bson:"status"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updatedAt"`
}

type InstallmentRequest struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount" validate:"gte=0"`
	Paid   bool      `json:"paid"`
}

type HirePurchaseCreateRequest struct {
	CustomerName string               `json:"customerName" validate:"required"`
	CustomerNIC  string               `json:"customerNic"`
	ProductName  string               `json:"productName"`
	TotalAmount  float64              `json:"totalAmount" validate:"gte=0"`
	DownPayment  float64              `json:"downPayment" validate:"gte=0"`
	Installments []InstallmentRequest `json:"installments" validate:"dive"`
}

type CollectPaymentRequest struct {
	InstallmentID string  `json:"installmentId" validate:"required"`
	Amount        float64 `json:"amount"`
}

type Expense struct {
	ID          string    `json:"_id" bson:"_id"`
	Type        string    `json:"type" bson:"type"`
	Amount      float64   `json:"amount" bson:"amount"`
	Date        time.Time `json:"date" bson:"date"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

type ExpenseCreateRequest struct {
	Type        string     `json:"type" validate:"required"`
	Amount      float64    `json:"amount" validate:"gte=0"`
	Date        *time.Time `json:"date"`
	Description string     `json:"description"`
}

type Staff struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Role      string    `json:"role" bson:"role"`
	Salary    float64   `json:"salary" bson:"salary"`
	JoinDate  time.Time `json:"joinDate" bson:"joinDate"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty"`
	NIC       string    `json:"nic,omitempty" bson:"nic,omitempty"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// StaffRequest is used for both create and partial update; nil fields are
// left untouched on update.
type StaffRequest struct {
	Name     *string    `json:"name" validate:"omitempty,min=1"`
	Email    *string    `json:"email" validate:"omitempty,email"`
	Phone    *string    `json:"phone"`
	Role     *string    `json:"role" validate:"omitempty,oneof=Admin Cashier Technician Manager"`
	Salary   *float64   `json:"salary" validate:"omitempty,gte=0"`
	JoinDate *time.Time `json:"joinDate"`
	Address  *string    `json:"address"`
	NIC      *string    `json:"nic"`
	Status   *string    `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

type Customer struct {
	ID             string    `json:"_id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Email          string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone          string    `json:"phone" bson:"phone"`
	Address        string    `json:"address,omitempty" bson:"address,omitempty"`
	NIC            string    `json:"nic,omitempty" bson:"nic,omitempty"`
	TotalPurchases float64   `json:"totalPurchases" bson:"totalPurchases"`
	LoyaltyPoints  int       `json:"loyaltyPoints" bson:"loyaltyPoints"`
	Status         string    `json:"status" bson:"status"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

type CustomerRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=1"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	Phone          *string  `json:"phone" validate:"omitempty,min=1"`
	Address        *string  `json:"address"`
	NIC            *string  `json:"nic"`
	TotalPurchases *float64 `json:"totalPurchases" validate:"omitempty,gte=0"`
	LoyaltyPoints  *int     `json:"loyaltyPoints" validate:"omitempty,gte=0"`
	Status         *string  `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

type Supplier struct {
	ID               string    `json:"_id" bson:"_id"`
	Name             string    `json:"name" bson:"name"`
	Company          string    `json:"company,omitempty" bson:"company,omitempty"`
	Email            string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone            string    `json:"phone" bson:"phone"`
	Address          string    `json:"address,omitempty" bson:"address,omitempty"`
	ProductsSupplied []string  `json:"productsSupplied" bson:"productsSupplied"`
	PaymentTerms     string    `json:"paymentTerms,omitempty" bson:"paymentTerms,omitempty"`
	Status           string    `json:"status" bson:"status"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}

type SupplierRequest struct {
	Name             *string   `json:"name" validate:"omitempty,min=1"`
	Company          *string   `json:"company"`
	Email            *string   `json:"email" validate:"omitempty,email"`
	Phone            *string   `json:"phone" validate:"omitempty,min=1"`
	Address          *string   `json:"address"`
	ProductsSupplied *[]string `json:"productsSupplied"`
	PaymentTerms     *string   `json:"paymentTerms"`
	Status           *string   `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

type Reload struct {
	ID        string    `json:"_id" bson:"_id"`
	Provider  string    `json:"provider" bson:"provider"`
	Number    string    `json:"number" bson:"number"`
	Amount    float64   `json:"amount" bson:"amount"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type ReloadCreateRequest struct {
	Provider string  `json:"provider" validate:"required"`
	Number   string  `json:"number" validate:"required"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	Status   string  `json:"status"`
}

type Notification struct {
	ID          string    `json:"_id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Type        string    `json:"type" bson:"type"`
	IsRead      bool      `json:"isRead" bson:"isRead"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

type NotificationCreateRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Type        string `json:"type" validate:"omitempty,oneof=Info Warning Alert Success"`
}
