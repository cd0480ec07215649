package magento

// ResourceType identifies a Magento resource wrapped by this library.
type ResourceType string

// Supported resource types.
const (
	ResourceOrders        ResourceType = "orders"
	ResourceOrderItems    ResourceType = "order_items"
	ResourceProducts      ResourceType = "products"
	ResourceCustomers     ResourceType = "customers"
	ResourceInvoices      ResourceType = "invoices"
	ResourceShipments     ResourceType = "shipments"
	ResourceCoupons       ResourceType = "coupons"
	ResourceSalesRules    ResourceType = "sales_rules"
	ResourceCategories    ResourceType = "categories"
	ResourceTaxClasses    ResourceType = "tax_classes"
	ResourceAttributeSets ResourceType = "attribute_sets"
	ResourceGeneric       ResourceType = "generic"
)

// Variant selects the lifecycle contract of a resource's models.
type Variant int

// Model lifecycle variants.
const (
	// VariantMutable models can be built for creation or retrieval and
	// saved either way.
	VariantMutable Variant = iota
	// VariantReadOnly models only exist as retrieval results; building one
	// for creation is rejected.
	VariantReadOnly
	// VariantImmutable models can be built like mutable ones (their
	// resources are created through the manager), but Save is always
	// rejected — local changes are never persisted.
	VariantImmutable
)

// resourceSpec describes how a resource maps onto the Magento REST API.
// Resolved from a fixed table at startup; there is no runtime type lookup.
type resourceSpec struct {
	// Endpoint serves single-item GET/PUT/DELETE as <Endpoint>/<uid>.
	Endpoint string
	// SearchEndpoint serves the searchCriteria interface. Often the same
	// as Endpoint, but some resources search through a /search sibling.
	SearchEndpoint string
	// CreateEndpoint receives POSTs for new items.
	CreateEndpoint string
	// Identifier is the response field the item uid comes from.
	Identifier string
	// PayloadPrefix is the key create/update payloads are nested under.
	PayloadPrefix string
	// Variant selects the model lifecycle contract.
	Variant Variant
	// RequiredKeys must be present in a create payload; checked before any
	// network call.
	RequiredKeys []string
}

var resourceSpecs = map[ResourceType]resourceSpec{
	ResourceOrders: {
		Endpoint:       "orders",
		SearchEndpoint: "orders",
		CreateEndpoint: "orders",
		Identifier:     "entity_id",
		PayloadPrefix:  "entity",
		Variant:        VariantImmutable,
	},
	ResourceOrderItems: {
		Endpoint:       "orders/items",
		SearchEndpoint: "orders/items",
		CreateEndpoint: "orders/items",
		Identifier:     "item_id",
		PayloadPrefix:  "entity",
		Variant:        VariantImmutable,
	},
	ResourceProducts: {
		Endpoint:       "products",
		SearchEndpoint: "products",
		CreateEndpoint: "products",
		Identifier:     "sku",
		PayloadPrefix:  "product",
		Variant:        VariantMutable,
		RequiredKeys:   []string{"sku", "attribute_set_id"},
	},
	ResourceCustomers: {
		Endpoint:       "customers",
		SearchEndpoint: "customers/search",
		CreateEndpoint: "customers",
		Identifier:     "id",
		PayloadPrefix:  "customer",
		Variant:        VariantMutable,
		RequiredKeys:   []string{"email"},
	},
	ResourceInvoices: {
		Endpoint:       "invoices",
		SearchEndpoint: "invoices",
		CreateEndpoint: "invoices",
		Identifier:     "entity_id",
		PayloadPrefix:  "entity",
		Variant:        VariantReadOnly,
	},
	ResourceShipments: {
		Endpoint:       "shipments",
		SearchEndpoint: "shipments",
		CreateEndpoint: "shipments",
		Identifier:     "entity_id",
		PayloadPrefix:  "entity",
		Variant:        VariantReadOnly,
	},
	ResourceCoupons: {
		Endpoint:       "coupons",
		SearchEndpoint: "coupons/search",
		CreateEndpoint: "coupons",
		Identifier:     "coupon_id",
		PayloadPrefix:  "coupon",
		Variant:        VariantImmutable,
		RequiredKeys:   []string{"code", "rule_id"},
	},
	ResourceSalesRules: {
		Endpoint:       "salesRules",
		SearchEndpoint: "salesRules/search",
		CreateEndpoint: "salesRules",
		Identifier:     "rule_id",
		PayloadPrefix:  "rule",
		Variant:        VariantImmutable,
	},
	ResourceCategories: {
		Endpoint:       "categories",
		SearchEndpoint: "categories/list",
		CreateEndpoint: "categories",
		Identifier:     "id",
		PayloadPrefix:  "category",
		Variant:        VariantMutable,
		RequiredKeys:   []string{"name"},
	},
	ResourceTaxClasses: {
		Endpoint:       "taxClasses",
		SearchEndpoint: "taxClasses/search",
		CreateEndpoint: "taxClasses",
		Identifier:     "class_id",
		PayloadPrefix:  "taxClass",
		Variant:        VariantMutable,
		RequiredKeys:   []string{"class_name", "class_type"},
	},
	ResourceAttributeSets: {
		Endpoint:       "products/attribute-sets",
		SearchEndpoint: "products/attribute-sets/sets/list",
		CreateEndpoint: "products/attribute-sets",
		Identifier:     "attribute_set_id",
		PayloadPrefix:  "attributeSet",
		Variant:        VariantMutable,
		RequiredKeys:   []string{"attribute_set_name"},
	},
	ResourceGeneric: {
		Identifier: "entity_id",
		Variant:    VariantReadOnly,
	},
}

// specFor resolves the resourceSpec for a type, falling back to the generic
// spec bound to the given endpoint.
func specFor(rt ResourceType, endpoint string) resourceSpec {
	spec, ok := resourceSpecs[rt]
	if !ok {
		spec = resourceSpecs[ResourceGeneric]
	}
	if spec.Endpoint == "" {
		spec.Endpoint = endpoint
		spec.SearchEndpoint = endpoint
		spec.CreateEndpoint = endpoint
	}
	return spec
}
