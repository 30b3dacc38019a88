package namesrv

import (
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/dreamware/namesrv/internal/cluster"
	"github.com/dreamware/namesrv/internal/metrics"
)

// ErrInvalidBroker is returned when a registration lacks its identity.
var ErrInvalidBroker = errors.New("cluster name, broker name and broker address are required")

// brokerLiveInfo tracks the last heartbeat of one broker address.
type brokerLiveInfo struct {
	lastUpdate   time.Time // Time of the last registration or heartbeat
	haServerAddr string    // Address slaves replicate from, if any
}

// RouteTable is the authoritative map of brokers and the topics they serve.
// Brokers register (and heartbeat) with a RegisterBrokerRequest; clients
// ask for a topic's route and get back every broker group hosting one of
// its queues.
//
// Tables:
//
//	┌──────────────────────────────────────────────────────┐
//	│                     RouteTable                       │
//	├──────────────────────────────────────────────────────┤
//	│  topics:   topic → brokerName → QueueData            │
//	│  brokers:  brokerName → BrokerData (id → addr)       │
//	│  clusters: clusterName → {brokerName}                │
//	│  live:     brokerAddr → last heartbeat               │
//	└──────────────────────────────────────────────────────┘
//
// Concurrency Model:
//   - Lookups use RLock and may run in parallel
//   - Registration, unregistration and expiry use Lock
//   - Every returned value is a copy
//
// Queue layouts are only taken from masters. Slaves register to appear in
// the broker table and to learn their master's address.
type RouteTable struct {
	topics   map[string]map[string]cluster.QueueData
	brokers  map[string]*cluster.BrokerData
	clusters map[string]map[string]struct{}
	live     map[string]*brokerLiveInfo

	// now is the clock used for heartbeats. Replaced in tests.
	now func() time.Time

	mu sync.RWMutex
}

// NewRouteTable creates an empty route table.
func NewRouteTable() *RouteTable {
	return &RouteTable{
		topics:   make(map[string]map[string]cluster.QueueData),
		brokers:  make(map[string]*cluster.BrokerData),
		clusters: make(map[string]map[string]struct{}),
		live:     make(map[string]*brokerLiveInfo),
		now:      time.Now,
	}
}

// RegisterBroker records a broker and, for masters, the queue layout of
// every topic it hosts. Re-registering refreshes the heartbeat.
//
// If the address was previously registered under a different id in the
// same group (a slave promoted to master, for example) the old id is
// dropped first.
//
// Returns:
//   - For slaves: the master's address and HA address, when a master is known
//   - ErrInvalidBroker when cluster name, broker name or address is missing
//
// Example:
//
//	res, err := routes.RegisterBroker(cluster.RegisterBrokerRequest{
//	    ClusterName: "DefaultCluster",
//	    BrokerName:  "broker-a",
//	    BrokerAddr:  "10.0.0.2:10911",
//	    BrokerID:    1,
//	})
//	// res.MasterAddr == "10.0.0.1:10911"
func (r *RouteTable) RegisterBroker(req cluster.RegisterBrokerRequest) (cluster.RegisterBrokerResult, error) {
	if req.ClusterName == "" || req.BrokerName == "" || req.BrokerAddr == "" {
		return cluster.RegisterBrokerResult{}, ErrInvalidBroker
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names, ok := r.clusters[req.ClusterName]
	if !ok {
		names = make(map[string]struct{})
		r.clusters[req.ClusterName] = names
	}
	names[req.BrokerName] = struct{}{}

	bd, ok := r.brokers[req.BrokerName]
	if !ok {
		bd = &cluster.BrokerData{
			Cluster:     req.ClusterName,
			BrokerName:  req.BrokerName,
			BrokerAddrs: make(map[int64]string),
		}
		r.brokers[req.BrokerName] = bd
	}
	for id, addr := range bd.BrokerAddrs {
		if addr == req.BrokerAddr && id != req.BrokerID {
			delete(bd.BrokerAddrs, id)
		}
	}
	bd.BrokerAddrs[req.BrokerID] = req.BrokerAddr

	if req.BrokerID == cluster.MasterID {
		for _, tc := range req.TopicConfigs {
			r.updateQueueData(req.BrokerName, tc)
		}
	}

	r.live[req.BrokerAddr] = &brokerLiveInfo{
		lastUpdate:   r.now(),
		haServerAddr: req.HAServerAddr,
	}

	var res cluster.RegisterBrokerResult
	if req.BrokerID != cluster.MasterID {
		if master := bd.MasterAddr(); master != "" {
			res.MasterAddr = master
			if info, ok := r.live[master]; ok {
				res.HAServerAddr = info.haServerAddr
			}
		}
	}

	metrics.BrokerRegistrations.Inc()
	metrics.BrokersRegistered.Set(float64(len(r.live)))
	return res, nil
}

// updateQueueData sets the queue layout of one topic on one broker group.
// Caller holds mu.
func (r *RouteTable) updateQueueData(brokerName string, tc cluster.TopicConfig) {
	queues, ok := r.topics[tc.TopicName]
	if !ok {
		queues = make(map[string]cluster.QueueData)
		r.topics[tc.TopicName] = queues
	}
	queues[brokerName] = cluster.QueueData{
		BrokerName:     brokerName,
		ReadQueueNums:  tc.ReadQueueNums,
		WriteQueueNums: tc.WriteQueueNums,
		Perm:           tc.Perm,
	}
}

// UnregisterBroker removes a broker on its explicit request. Returns false
// if the broker was not registered.
func (r *RouteTable) UnregisterBroker(req cluster.UnregisterBrokerRequest) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, known := r.live[req.BrokerAddr]
	delete(r.live, req.BrokerAddr)

	bd, ok := r.brokers[req.BrokerName]
	if ok {
		if addr, ok := bd.BrokerAddrs[req.BrokerID]; ok && addr == req.BrokerAddr {
			delete(bd.BrokerAddrs, req.BrokerID)
			known = true
		}
		if len(bd.BrokerAddrs) == 0 {
			r.removeBrokerName(req.BrokerName)
		}
	}

	if known {
		metrics.BrokerUnregistrations.Inc()
	}
	metrics.BrokersRegistered.Set(float64(len(r.live)))
	return known
}

// removeBrokerName drops a broker group from every table.
// Caller holds mu.
func (r *RouteTable) removeBrokerName(brokerName string) {
	bd, ok := r.brokers[brokerName]
	if !ok {
		return
	}
	delete(r.brokers, brokerName)

	if names, ok := r.clusters[bd.Cluster]; ok {
		delete(names, brokerName)
		if len(names) == 0 {
			delete(r.clusters, bd.Cluster)
		}
	}

	for topic, queues := range r.topics {
		delete(queues, brokerName)
		if len(queues) == 0 {
			delete(r.topics, topic)
		}
	}
}

// ExpireInactive removes every broker whose last heartbeat is older than
// maxIdle and returns their addresses in sorted order.
//
// A broker group whose last address expires is dropped entirely, together
// with its queues; topics left without queues disappear.
func (r *RouteTable) ExpireInactive(maxIdle time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var expired []string
	for addr, info := range r.live {
		if now.Sub(info.lastUpdate) > maxIdle {
			expired = append(expired, addr)
		}
	}

	for _, addr := range expired {
		delete(r.live, addr)
		for name, bd := range r.brokers {
			for id, a := range bd.BrokerAddrs {
				if a == addr {
					delete(bd.BrokerAddrs, id)
				}
			}
			if len(bd.BrokerAddrs) == 0 {
				r.removeBrokerName(name)
			}
		}
	}

	if len(expired) > 0 {
		metrics.BrokersExpired.Add(float64(len(expired)))
		metrics.BrokersRegistered.Set(float64(len(r.live)))
	}
	slices.Sort(expired)
	return expired
}

// TopicRoute returns the route of topic. The boolean is false when no
// broker hosts the topic.
func (r *RouteTable) TopicRoute(topic string) (cluster.TopicRouteData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	queues, ok := r.topics[topic]
	if !ok || len(queues) == 0 {
		metrics.RouteLookups.WithLabelValues(metrics.RouteNotFound).Inc()
		return cluster.TopicRouteData{}, false
	}

	route := cluster.TopicRouteData{
		QueueDatas:  make([]cluster.QueueData, 0, len(queues)),
		BrokerDatas: make([]cluster.BrokerData, 0, len(queues)),
	}
	for name, qd := range queues {
		route.QueueDatas = append(route.QueueDatas, qd)
		if bd, ok := r.brokers[name]; ok {
			route.BrokerDatas = append(route.BrokerDatas, copyBrokerData(bd))
		}
	}
	slices.SortFunc(route.QueueDatas, func(a, b cluster.QueueData) int {
		return strings.Compare(a.BrokerName, b.BrokerName)
	})
	slices.SortFunc(route.BrokerDatas, func(a, b cluster.BrokerData) int {
		return strings.Compare(a.BrokerName, b.BrokerName)
	})

	metrics.RouteLookups.WithLabelValues(metrics.RouteFound).Inc()
	return route, true
}

// ClusterInfo returns a copy of the broker and cluster tables. Broker names
// within each cluster are sorted.
func (r *RouteTable) ClusterInfo() cluster.ClusterInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info := cluster.ClusterInfo{
		BrokerAddrTable:  make(map[string]cluster.BrokerData, len(r.brokers)),
		ClusterAddrTable: make(map[string][]string, len(r.clusters)),
	}
	for name, bd := range r.brokers {
		info.BrokerAddrTable[name] = copyBrokerData(bd)
	}
	for clusterName, names := range r.clusters {
		list := make([]string, 0, len(names))
		for name := range names {
			list = append(list, name)
		}
		slices.Sort(list)
		info.ClusterAddrTable[clusterName] = list
	}
	return info
}

// Topics returns the sorted names of every routed topic.
func (r *RouteTable) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]string, 0, len(r.topics))
	for t := range r.topics {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics
}

// BrokerCount returns the number of live broker addresses.
func (r *RouteTable) BrokerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}

func copyBrokerData(bd *cluster.BrokerData) cluster.BrokerData {
	out := cluster.BrokerData{
		Cluster:     bd.Cluster,
		BrokerName:  bd.BrokerName,
		BrokerAddrs: make(map[int64]string, len(bd.BrokerAddrs)),
	}
	for id, addr := range bd.BrokerAddrs {
		out.BrokerAddrs[id] = addr
	}
	return out
}
