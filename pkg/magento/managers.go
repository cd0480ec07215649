package magento

import (
	"context"
	"strconv"

	"github.com/donaldgifford/magento-go/pkg/query"
)

// Typed managers. Each embeds the generic Manager and adds the lookups
// that are idiomatic for the resource. They carry no state beyond the
// embedded manager, so accessors construct them on the fly.

// OrderManager wraps the orders endpoint.
type OrderManager struct {
	*Manager
}

// Orders returns the order manager.
func (c *Client) Orders() *OrderManager {
	return &OrderManager{Manager: c.Manager(ResourceOrders)}
}

// ByNumber looks an order up by its customer-facing increment_id.
func (m *OrderManager) ByNumber(ctx context.Context, number string) (*Model, error) {
	return m.FirstByField(ctx, "increment_id", number)
}

// ByStatus searches orders in the given status.
func (m *OrderManager) ByStatus(ctx context.Context, status string) ([]*Model, error) {
	return m.ByField(ctx, "status", status)
}

// ByCustomerID searches orders placed by one customer.
func (m *OrderManager) ByCustomerID(ctx context.Context, customerID int) ([]*Model, error) {
	return m.ByField(ctx, "customer_id", strconv.Itoa(customerID))
}

// OrderItemManager wraps the orders/items endpoint.
type OrderItemManager struct {
	*Manager
}

// OrderItems returns the order item manager.
func (c *Client) OrderItems() *OrderItemManager {
	return &OrderItemManager{Manager: c.Manager(ResourceOrderItems)}
}

// BySKU searches line items for one product sku.
func (m *OrderItemManager) BySKU(ctx context.Context, sku string) ([]*Model, error) {
	return m.ByField(ctx, "sku", sku)
}

// ByOrderID searches line items belonging to one order.
func (m *OrderItemManager) ByOrderID(ctx context.Context, orderID int) ([]*Model, error) {
	return m.ByField(ctx, "order_id", strconv.Itoa(orderID))
}

// ProductManager wraps the products endpoint.
type ProductManager struct {
	*Manager
}

// Products returns the product manager.
func (c *Client) Products() *ProductManager {
	return &ProductManager{Manager: c.Manager(ResourceProducts)}
}

// BySKU retrieves a product directly through its item endpoint; the sku is
// the product identifier.
func (m *ProductManager) BySKU(ctx context.Context, sku string) (*Model, error) {
	return m.ByID(ctx, sku)
}

// ByCategoryID searches products assigned to a category.
func (m *ProductManager) ByCategoryID(ctx context.Context, categoryID int) ([]*Model, error) {
	return m.ByField(ctx, "category_id", strconv.Itoa(categoryID))
}

// Count reports how many products match the builder without fetching the
// full set: one page of one item is enough to read total_count.
func (m *ProductManager) Count(ctx context.Context, b *query.Builder) (int, error) {
	b = b.Clone().PageSize(1).MaxPages(1)
	result, err := m.client.ExecuteSearch(ctx, m.spec.SearchEndpoint, b)
	if err != nil {
		return 0, err
	}
	return result.TotalCount, nil
}

// CustomerManager wraps the customers endpoint.
type CustomerManager struct {
	*Manager
}

// Customers returns the customer manager.
func (c *Client) Customers() *CustomerManager {
	return &CustomerManager{Manager: c.Manager(ResourceCustomers)}
}

// ByEmail returns the customer with the given email, or ErrNotFound.
func (m *CustomerManager) ByEmail(ctx context.Context, email string) (*Model, error) {
	return m.FirstByField(ctx, "email", email)
}

// ByFirstName searches customers by first name.
func (m *CustomerManager) ByFirstName(ctx context.Context, name string) ([]*Model, error) {
	return m.ByField(ctx, "firstname", name)
}

// ByLastName searches customers by last name.
func (m *CustomerManager) ByLastName(ctx context.Context, name string) ([]*Model, error) {
	return m.ByField(ctx, "lastname", name)
}

// InvoiceManager wraps the invoices endpoint.
type InvoiceManager struct {
	*Manager
}

// Invoices returns the invoice manager.
func (c *Client) Invoices() *InvoiceManager {
	return &InvoiceManager{Manager: c.Manager(ResourceInvoices)}
}

// ByNumber looks an invoice up by its increment_id.
func (m *InvoiceManager) ByNumber(ctx context.Context, number string) (*Model, error) {
	return m.FirstByField(ctx, "increment_id", number)
}

// ByOrderID searches invoices issued for one order.
func (m *InvoiceManager) ByOrderID(ctx context.Context, orderID int) ([]*Model, error) {
	return m.ByField(ctx, "order_id", strconv.Itoa(orderID))
}

// ShipmentManager wraps the shipments endpoint.
type ShipmentManager struct {
	*Manager
}

// Shipments returns the shipment manager.
func (c *Client) Shipments() *ShipmentManager {
	return &ShipmentManager{Manager: c.Manager(ResourceShipments)}
}

// ByOrderID searches shipments issued for one order.
func (m *ShipmentManager) ByOrderID(ctx context.Context, orderID int) ([]*Model, error) {
	return m.ByField(ctx, "order_id", strconv.Itoa(orderID))
}

// CouponManager wraps the coupons endpoint.
type CouponManager struct {
	*Manager
}

// Coupons returns the coupon manager.
func (c *Client) Coupons() *CouponManager {
	return &CouponManager{Manager: c.Manager(ResourceCoupons)}
}

// ByCode returns the coupon with the given code, or ErrNotFound.
func (m *CouponManager) ByCode(ctx context.Context, code string) (*Model, error) {
	return m.FirstByField(ctx, "code", code)
}

// ByRuleID searches coupons generated by one sales rule.
func (m *CouponManager) ByRuleID(ctx context.Context, ruleID int) ([]*Model, error) {
	return m.ByField(ctx, "rule_id", strconv.Itoa(ruleID))
}

// SalesRuleManager wraps the salesRules endpoint.
type SalesRuleManager struct {
	*Manager
}

// SalesRules returns the sales rule manager.
func (c *Client) SalesRules() *SalesRuleManager {
	return &SalesRuleManager{Manager: c.Manager(ResourceSalesRules)}
}

// ByName searches sales rules by name.
func (m *SalesRuleManager) ByName(ctx context.Context, name string) ([]*Model, error) {
	return m.ByField(ctx, "name", name)
}

// CategoryManager wraps the categories endpoint.
type CategoryManager struct {
	*Manager
}

// Categories returns the category manager.
func (c *Client) Categories() *CategoryManager {
	return &CategoryManager{Manager: c.Manager(ResourceCategories)}
}

// ByName searches categories by name.
func (m *CategoryManager) ByName(ctx context.Context, name string) ([]*Model, error) {
	return m.ByField(ctx, "name", name)
}

// Root retrieves the store's root category. Magento assigns it id 1.
func (m *CategoryManager) Root(ctx context.Context) (*Model, error) {
	return m.ByID(ctx, "1")
}

// TaxClassManager wraps the taxClasses endpoint.
type TaxClassManager struct {
	*Manager
}

// TaxClasses returns the tax class manager.
func (c *Client) TaxClasses() *TaxClassManager {
	return &TaxClassManager{Manager: c.Manager(ResourceTaxClasses)}
}

// ByType searches tax classes of one class_type (PRODUCT or CUSTOMER).
func (m *TaxClassManager) ByType(ctx context.Context, classType string) ([]*Model, error) {
	return m.ByField(ctx, "class_type", classType)
}

// AttributeSetManager wraps the product attribute set endpoints.
type AttributeSetManager struct {
	*Manager
}

// AttributeSets returns the attribute set manager.
func (c *Client) AttributeSets() *AttributeSetManager {
	return &AttributeSetManager{Manager: c.Manager(ResourceAttributeSets)}
}

// ByName returns the attribute set with the given name, or ErrNotFound.
func (m *AttributeSetManager) ByName(ctx context.Context, name string) (*Model, error) {
	return m.FirstByField(ctx, "attribute_set_name", name)
}

// Default retrieves the stock Default attribute set. Magento assigns it id 4,
// the attribute_set_id new products get unless told otherwise.
func (m *AttributeSetManager) Default(ctx context.Context) (*Model, error) {
	return m.ByID(ctx, "4")
}
