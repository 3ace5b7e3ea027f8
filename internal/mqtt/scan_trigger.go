package mqtt

import (
	"fmt"

	"go.uber.org/zap"
)

// scanTriggerer is the slice of the scanner the broker needs.
type scanTriggerer interface {
	TriggerScan()
}

// subscriber is the slice of the MQTT client the broker needs.
type subscriber interface {
	Subscribe(topic string, qos byte, handler MessageHandler) error
	Unsubscribe(topics ...string) error
}

// ScanTriggerBroker 扫描触发模块
//
// Companion apps publish a message to the scan topic right after uploading a
// device export, so the kiosk picks the file up immediately instead of
// waiting for the next polling tick. The payload is ignored; any message on
// the topic is a trigger.
type ScanTriggerBroker struct {
	scanner scanTriggerer
	topic   string
	logger  *zap.Logger
}

// NewScanTriggerBroker 创建扫描触发 Broker
func NewScanTriggerBroker(scanner scanTriggerer, topic string, logger *zap.Logger) *ScanTriggerBroker {
	return &ScanTriggerBroker{
		scanner: scanner,
		topic:   topic,
		logger:  logger,
	}
}

// HandleMessage 处理 MQTT 消息（任何消息都触发一次扫描）
func (b *ScanTriggerBroker) HandleMessage(topic string, payload []byte) error {
	b.logger.Info("Scan triggered via MQTT",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)
	b.scanner.TriggerScan()
	return nil
}

// Start 订阅扫描主题
func (b *ScanTriggerBroker) Start(client subscriber) error {
	if err := client.Subscribe(b.topic, 1, b.HandleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", b.topic, err)
	}

	b.logger.Info("Scan trigger broker started",
		zap.String("topic", b.topic),
	)
	return nil
}

// Stop 取消订阅
func (b *ScanTriggerBroker) Stop(client subscriber) error {
	if err := client.Unsubscribe(b.topic); err != nil {
		b.logger.Error("Failed to unsubscribe", zap.Error(err))
		return err
	}

	b.logger.Info("Scan trigger broker stopped")
	return nil
}
