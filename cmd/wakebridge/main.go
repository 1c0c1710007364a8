package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/wake.go/pkg/bridge/mqtt"
	"github.com/robotalks/wake.go/pkg/config"
	fx "github.com/robotalks/wake.go/pkg/framework"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()
	config.LogEnvErrors()

	conf := config.Default()
	client, err := conf.OpenClient()
	if err != nil {
		glog.Exitf("open %q: %v", conf.Port, err)
	}
	defer client.Close()

	bridge, err := mqtt.NewBridge(conf.MQTTBrokerURL, conf.ID(), conf.Port, client)
	if err != nil {
		glog.Exitf("bridge: %v", err)
	}
	glog.Infof("bridging %s as %q on %s", conf.Port, bridge.NodeID, conf.MQTTBrokerURL)
	if err := fx.NewRunner().HandleSignals().Go(bridge).Wait(); err != nil {
		glog.Exit(err)
	}
}
