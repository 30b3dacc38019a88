// Package kvconfig implements the name server's namespaced key/value
// configuration store.
//
// Values are grouped by namespace (for example ORDER_TOPIC_CONFIG, which
// maps topic names to their order configuration) and persisted as JSON:
//
//	{
//	  "configTable": {
//	    "ORDER_TOPIC_CONFIG": {"TopicTest": "broker-a:4"}
//	  }
//	}
//
// The file is loaded once at startup and rewritten after every Put or
// Delete. A missing file simply means an empty store.
package kvconfig
