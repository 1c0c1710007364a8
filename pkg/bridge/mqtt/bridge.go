// Package mqtt exposes a wake.Client to MQTT.
//
// Topics relative to the prefix of the broker URL:
//
//   <node>/meta        retained msgs.Status, cleared when the bridge leaves
//   <node>/req         msgs.Request, runs one exchange
//   <node>/rep         msgs.Reply
//   <node>/info/req    msgs.Request, only ID and Address are used
//   <node>/info/rep    msgs.Info
//
// Requests are served one at a time in arrival order.
package mqtt

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/wake.go/pkg/msgs"
	"github.com/robotalks/wake.go/pkg/wake"
)

// Topic suffixes.
const (
	TopicMeta    = "meta"
	TopicReq     = "req"
	TopicRep     = "rep"
	TopicInfoReq = "info/req"
	TopicInfoRep = "info/rep"
)

// DefaultBacklog is the number of requests queued before new ones are
// dropped.
const DefaultBacklog = 16

// Bridge serves requests from MQTT using a wake.Client.
type Bridge struct {
	Client *wake.Client
	Queue  *Queue
	NodeID string
	Port   string

	jobs chan job
}

type job struct {
	topic string
	req   msgs.Request
}

// NewBridge creates a bridge connecting to brokerURL. The will of the
// connection clears the retained meta.
func NewBridge(brokerURL, nodeID, port string, client *wake.Client) (*Bridge, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+nodeID+"/"+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("wake:" + nodeID)
	}
	b := newBridge(nodeID, port, client)
	b.Queue = NewQueue(opts, prefix)
	b.Queue.OnConnect = b.publishStatus
	return b, nil
}

func newBridge(nodeID, port string, client *wake.Client) *Bridge {
	return &Bridge{
		Client: client,
		NodeID: nodeID,
		Port:   port,
		jobs:   make(chan job, DefaultBacklog),
	}
}

func (b *Bridge) topic(suffix string) string {
	return b.NodeID + "/" + suffix
}

// Name implements Named.
func (b *Bridge) Name() string {
	return "bridge:" + b.NodeID
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	reqSub := b.Queue.Sub(b.topic(TopicReq), b.enqueue)
	defer reqSub.Close()
	infoSub := b.Queue.Sub(b.topic(TopicInfoReq), b.enqueue)
	defer infoSub.Close()
	if err := b.Queue.Connect(); err != nil {
		return err
	}
	defer b.Queue.Close()
	for {
		select {
		case <-ctx.Done():
			b.Queue.PubWith(b.topic(TopicMeta), nil, 1, true).WaitTimeout(time.Second)
			return ctx.Err()
		case j := <-b.jobs:
			topic, msg := b.serve(j)
			if err := b.publish(topic, msg); err != nil {
				glog.Errorf("publish %s: %v", topic, err)
			}
		}
	}
}

func (b *Bridge) publish(topic string, msg proto.Message) error {
	payload, err := proto.Marshal(msg)
	if err != nil {
		return err
	}
	token := b.Queue.Pub(topic, payload)
	token.Wait()
	return token.Error()
}

func (b *Bridge) publishStatus(*Queue) {
	payload, err := proto.Marshal(&msgs.Status{NodeID: b.NodeID, Port: b.Port, Online: true})
	if err != nil {
		glog.Errorf("encode status: %v", err)
		return
	}
	b.Queue.PubWith(b.topic(TopicMeta), payload, 1, true)
}

// enqueue runs on the MQTT client goroutine and must not block.
func (b *Bridge) enqueue(topic string, payload []byte) {
	j := job{topic: topic}
	if err := proto.Unmarshal(payload, &j.req); err != nil {
		glog.Warningf("%s: bad request: %v", topic, err)
		return
	}
	select {
	case b.jobs <- j:
	default:
		glog.Warningf("%s: backlog full, request %q dropped", topic, j.req.ID)
	}
}

func (b *Bridge) serve(j job) (string, proto.Message) {
	if j.topic == b.topic(TopicInfoReq) {
		return b.topic(TopicInfoRep), b.HandleInfo(&j.req)
	}
	return b.topic(TopicRep), b.Handle(&j.req)
}

// Handle runs one exchange.
func (b *Bridge) Handle(req *msgs.Request) *msgs.Reply {
	reply := &msgs.Reply{ID: req.ID, Address: req.Address, Command: req.Command}
	pkt, err := req.Packet()
	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	timeout := b.Client.Timeout
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	err = b.Client.Request(pkt, timeout)
	reply.Outcome = b.Client.LastOutcome().String()
	reply.TxCrc = uint32(b.Client.TxCRC())
	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	if !pkt.IsBroadcast() {
		reply.Address, reply.Command = uint32(pkt.Address), uint32(pkt.Command)
		reply.Data = append([]byte(nil), pkt.Data()...)
		reply.RxCrc = uint32(b.Client.RxCRC())
	}
	return reply
}

// HandleInfo queries the device info.
func (b *Bridge) HandleInfo(req *msgs.Request) *msgs.Info {
	if req.Address > wake.MaxAddress {
		return &msgs.Info{ID: req.ID, Address: req.Address, Error: wake.ErrInvalidAddress.Error()}
	}
	info, err := b.Client.DeviceInfo(byte(req.Address))
	if err != nil {
		return &msgs.Info{ID: req.ID, Address: req.Address, Error: err.Error()}
	}
	m := msgs.InfoFrom(info)
	m.ID = req.ID
	return m
}
