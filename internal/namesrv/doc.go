// Package namesrv implements the name server controller: a lightweight
// registry that brokers report to and clients query to find out which
// brokers serve a topic.
//
// # Components
//
// RouteTable holds the broker groups, their clusters and the queue layout
// of every topic. Brokers register with POST /brokers and repeat the
// registration as a heartbeat. BrokerMonitor scans the table every
// scanNotActiveBrokerInterval milliseconds and drops brokers that have been
// silent for longer than brokerChannelExpiredTime milliseconds.
//
// The KV config store (package kvconfig) is loaded from kvConfigPath during
// Initialize and dumped to the log every ten minutes. Route lookups attach
// the ORDER_TOPIC_CONFIG entry of a topic when orderMessageEnable is set.
//
// # HTTP API
//
//	GET    /health
//	GET    /metrics
//	POST   /brokers
//	POST   /brokers/unregister
//	GET    /topics
//	GET    /topics/{topic}/route
//	GET    /cluster
//	GET    /config                (text/plain: sorted key=value lines)
//	PUT    /config                (all or nothing)
//	GET    /kv/{namespace}
//	GET    /kv/{namespace}/{key}
//	PUT    /kv/{namespace}/{key}
//	DELETE /kv/{namespace}/{key}
//
// All endpoints but /health and /metrics are limited to serverWorkerThreads
// concurrent requests.
//
// # Lifecycle
//
//	ctrl := namesrv.NewController(svc, tr, logger)
//	if !ctrl.Initialize() {
//	    ctrl.Shutdown()
//	    return
//	}
//	if err := ctrl.Start(); err != nil { ... }
//	defer ctrl.Shutdown()
package namesrv
