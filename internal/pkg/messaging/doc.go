// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// Drivers exist for NSQ, NATS, Kafka, Google Pub/Sub and an in-process
// broker. Every driver hands received messages to the handler as a Message
// and, when auto-ack is enabled, acks on success and nacks on error.
package messaging
