package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/tiller.go/pkg/link/mqtt"
	"github.com/robotalks/tiller.go/pkg/motor"
	"github.com/robotalks/tiller.go/pkg/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/boat/"
)

func init() {
	if val := os.Getenv("TILLER_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func printMessage(topic string, payload []byte) {
	switch topic[strings.LastIndex(topic, "/")+1:] {
	case mqtt.TopicMeta:
		log.Printf("%s: %s", topic, string(payload))
	case mqtt.TopicCmd:
		cmd, err := motor.ParseCommand(payload)
		if err != nil {
			log.Printf("%s: [% x] %v", topic, payload, err)
			return
		}
		log.Printf("%s: [% x] %s", topic, payload, cmd)
	case mqtt.TopicRead:
		log.Printf("%s", topic)
	case mqtt.TopicValue:
		log.Printf("%s: [% x]", topic, payload)
	case mqtt.TopicMsg:
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			return
		}
		log.Printf("%s: [%T] %s", topic, msg,
			msg.(msgs.SerializableMessage).Serializable().String())
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("#", printMessage)
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
