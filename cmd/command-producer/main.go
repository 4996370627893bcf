// Command command-producer publishes a synthetic sequenced command stream to
// Kafka for exercising the trading engine locally.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"strings"
	"time"

	assetv1 "github.com/exchangelabs/trading-core/internal/domain/asset/v1"
	commandv1 "github.com/exchangelabs/trading-core/internal/domain/command/v1"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

func generateCommands(count int, basePrice, priceSpread float64) []commandv1.SequencedCommand {
	var commands []commandv1.SequencedCommand

	// a small pool of users so orders actually cross; id 1 is reserved for
	// the system account
	users := make([]int64, 8)
	for i := range users {
		users[i] = int64(uuid.New().ID()%100_000 + 2)
	}

	// fund every user with both assets before any order arrives
	seq := int64(0)
	fund := func(userID int64, asset string, amount float64) {
		seq++
		commands = append(commands, commandv1.SequencedCommand{
			SequenceID: seq,
			Timestamp:  time.Now().UnixMilli(),
			Type:       commandv1.TypeTransfer,
			Transfer: &commandv1.TransferPayload{
				FromUserID: assetv1.SystemUserID,
				ToUserID:   userID,
				Asset:      asset,
				Amount:     decimal.NewFromFloat(amount).Round(2),
			},
		})
	}
	for _, userID := range users {
		fund(userID, "USD", basePrice*100)
		fund(userID, "BTC", 100)
	}

	for i := 0; i < count; i++ {
		direction := "SELL"
		if rand.Float64() < 0.5 {
			direction = "BUY"
		}
		orderType := "limit"
		if rand.Float64() < 0.3 {
			orderType = "market"
		}

		quantity := 0.01 + rand.Float64()*9.99
		var price float64
		if direction == "BUY" {
			price = basePrice - rand.Float64()*priceSpread*0.8
		} else {
			price = basePrice + rand.Float64()*priceSpread*0.8
		}
		if price <= 0 {
			price = basePrice
		}

		seq++
		commands = append(commands, commandv1.SequencedCommand{
			SequenceID: seq,
			Timestamp:  time.Now().UnixMilli(),
			Type:       commandv1.TypePlaceOrder,
			PlaceOrder: &commandv1.PlaceOrderPayload{
				OrderID:   int64(i + 1),
				UserID:    users[rand.Intn(len(users))],
				Direction: direction,
				OrderType: orderType,
				Price:     decimal.NewFromFloat(price).Round(1),
				Quantity:  decimal.NewFromFloat(quantity).Round(3),
			},
		})
	}

	return commands
}

func main() {
	var (
		brokers   = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic     = flag.String("topic", "commands", "Kafka topic name")
		count     = flag.Int("count", 100, "number of commands to generate")
		basePrice = flag.Float64("base-price", 30_000, "base price for generated orders")
		spread    = flag.Float64("spread", 500, "price spread around the base price")
	)
	flag.Parse()

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: strings.Split(*brokers, ","),
		Topic:   *topic,
	})
	defer writer.Close()

	ctx := context.Background()
	commands := generateCommands(*count, *basePrice, *spread)

	for _, cmd := range commands {
		value, err := json.Marshal(cmd)
		if err != nil {
			log.Fatalf("marshal command %d: %v", cmd.SequenceID, err)
		}
		if err := writer.WriteMessages(ctx, kafka.Message{Value: value}); err != nil {
			log.Fatalf("write command %d: %v", cmd.SequenceID, err)
		}
	}

	log.Printf("published %d commands to %s", len(commands), *topic)
}
