package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MasterID is the broker id of a master broker. Any other id is a slave.
const MasterID int64 = 0

// Queue permissions.
const (
	PermRead  = 1 << 2
	PermWrite = 1 << 1
)

// TopicConfig describes one topic hosted by a broker.
type TopicConfig struct {
	TopicName      string `json:"topic_name"`
	ReadQueueNums  int    `json:"read_queue_nums"`
	WriteQueueNums int    `json:"write_queue_nums"`
	Perm           int    `json:"perm"`
}

// RegisterBrokerRequest announces a broker and the topics it hosts. Brokers
// resend it periodically; every request counts as a heartbeat.
type RegisterBrokerRequest struct {
	ClusterName  string        `json:"cluster_name"`
	BrokerAddr   string        `json:"broker_addr"`
	BrokerName   string        `json:"broker_name"`
	HAServerAddr string        `json:"ha_server_addr,omitempty"`
	TopicConfigs []TopicConfig `json:"topic_configs,omitempty"`
	BrokerID     int64         `json:"broker_id"`
}

// RegisterBrokerResult tells a slave where its master is.
type RegisterBrokerResult struct {
	HAServerAddr string `json:"ha_server_addr,omitempty"`
	MasterAddr   string `json:"master_addr,omitempty"`
}

type UnregisterBrokerRequest struct {
	ClusterName string `json:"cluster_name"`
	BrokerAddr  string `json:"broker_addr"`
	BrokerName  string `json:"broker_name"`
	BrokerID    int64  `json:"broker_id"`
}

// BrokerData is one broker group: a master and its slaves, keyed by id.
type BrokerData struct {
	BrokerAddrs map[int64]string `json:"broker_addrs"`
	Cluster     string           `json:"cluster"`
	BrokerName  string           `json:"broker_name"`
}

// MasterAddr returns the address of the master, or "" when there is none.
func (b BrokerData) MasterAddr() string {
	return b.BrokerAddrs[MasterID]
}

// QueueData is the queue layout of a topic on one broker group.
type QueueData struct {
	BrokerName     string `json:"broker_name"`
	ReadQueueNums  int    `json:"read_queue_nums"`
	WriteQueueNums int    `json:"write_queue_nums"`
	Perm           int    `json:"perm"`
}

// TopicRouteData tells clients which brokers serve a topic.
type TopicRouteData struct {
	OrderTopicConf string       `json:"order_topic_conf,omitempty"`
	QueueDatas     []QueueData  `json:"queue_datas"`
	BrokerDatas    []BrokerData `json:"broker_datas"`
}

// ClusterInfo is the full broker table of the name server.
type ClusterInfo struct {
	BrokerAddrTable  map[string]BrokerData `json:"broker_addr_table"`
	ClusterAddrTable map[string][]string   `json:"cluster_addr_table"`
}

// TopicList is the set of topics known to the name server.
type TopicList struct {
	Topics []string `json:"topic_list"`
}

// StatusError is returned by the JSON helpers for non-2xx responses.
type StatusError struct {
	URL        string
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %s: %d", e.URL, e.StatusCode)
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

// DoJSON sends body (if non-nil) as JSON with method and decodes a JSON
// response into out (if non-nil).
func DoJSON(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func PostJSON(ctx context.Context, url string, body any, out any) error {
	return DoJSON(ctx, http.MethodPost, url, body, out)
}

func GetJSON(ctx context.Context, url string, out any) error {
	return DoJSON(ctx, http.MethodGet, url, nil, out)
}
