package crm

const (
	TopicCustomerCreated      = "crm.customer.created"
	TopicCustomersBulkCreated = "crm.customers.bulk_created"
	TopicProductCreated       = "crm.product.created"
	TopicOrderCreated         = "crm.order.created"
)

// Topics lists every topic the service publishes to.
var Topics = []string{
	TopicCustomerCreated,
	TopicCustomersBulkCreated,
	TopicProductCreated,
	TopicOrderCreated,
}

var topicByEvent = map[string]string{
	EventCustomerCreated:      TopicCustomerCreated,
	EventCustomersBulkCreated: TopicCustomersBulkCreated,
	EventProductCreated:       TopicProductCreated,
	EventOrderCreated:         TopicOrderCreated,
}

// Partition key = entity id, so events about one entity keep their order.
func PartitionKey(id string) []byte { return []byte(id) }
