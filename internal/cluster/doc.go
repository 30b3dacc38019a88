// Package cluster defines the wire types exchanged between brokers, clients
// and the name server, plus small HTTP/JSON helpers to exchange them.
//
// # Model
//
// Brokers are grouped by broker name. A group has one master (broker id
// MasterID) and any number of slaves, and belongs to a cluster:
//
//	cluster "DefaultCluster"
//	  broker group "broker-a": 0 -> 10.0.0.1:10911, 1 -> 10.0.0.2:10911
//	  broker group "broker-b": 0 -> 10.0.0.3:10911
//
// Each broker periodically sends a RegisterBrokerRequest listing the topics
// it hosts. The name server folds those into TopicRouteData, which clients
// fetch to learn where a topic's queues live.
//
// # Protocol
//
// All messages are JSON over HTTP:
//
//	POST /brokers               RegisterBrokerRequest -> RegisterBrokerResult
//	POST /brokers/unregister    UnregisterBrokerRequest
//	GET  /topics                TopicList
//	GET  /topics/{topic}/route  TopicRouteData
//	GET  /cluster               ClusterInfo
//
// # Client helpers
//
// PostJSON, GetJSON and DoJSON are the broker and client side of the
// protocol: brokers use them to register and unregister, clients to fetch
// routes. The name server itself only serves. They use a client with a 5
// second timeout and report non-2xx responses as *StatusError.
package cluster
