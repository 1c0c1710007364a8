package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/wake.go/pkg/bridge/mqtt"
	"github.com/robotalks/wake.go/pkg/config"
	fx "github.com/robotalks/wake.go/pkg/framework"
	"github.com/robotalks/wake.go/pkg/msgs"
)

type monitor struct {
	queue *mqtt.Queue
}

func (m *monitor) Run(ctx context.Context) error {
	m.queue.Sub("#", m.print)
	if err := m.queue.Connect(); err != nil {
		return err
	}
	defer m.queue.Close()
	<-ctx.Done()
	return ctx.Err()
}

func (m *monitor) print(topic string, payload []byte) {
	var msg proto.Message
	switch {
	case strings.HasSuffix(topic, "/"+mqtt.TopicMeta):
		if len(payload) == 0 {
			log.Printf("%s: offline", topic)
			return
		}
		msg = &msgs.Status{}
	case strings.HasSuffix(topic, "/"+mqtt.TopicInfoRep):
		msg = &msgs.Info{}
	case strings.HasSuffix(topic, "/"+mqtt.TopicInfoReq), strings.HasSuffix(topic, "/"+mqtt.TopicReq):
		msg = &msgs.Request{}
	case strings.HasSuffix(topic, "/"+mqtt.TopicRep):
		msg = &msgs.Reply{}
	default:
		log.Printf("%s: %d bytes", topic, len(payload))
		return
	}
	if err := proto.Unmarshal(payload, msg); err != nil {
		log.Printf("%s: bad message: %v", topic, err)
		return
	}
	log.Printf("%s: %s", topic, msg.String())
}

func main() {
	flag.StringVar(&config.Default().MQTTBrokerURL, "mqtt", config.Default().MQTTBrokerURL, "MQTT broker URL.")
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(config.Default().MQTTBrokerURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := fx.NewRunner().HandleSignals().Go(&monitor{queue: q}).Wait(); err != nil {
		log.Fatalln(err)
	}
}
