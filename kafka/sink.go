// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package kafka publishes flattened tables to Kafka, one JSON message per
// row.
package kafka

import (
	"github.com/Shopify/sarama"
	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

// DefaultTopicPrefix is the topic prefix used when none is given.
const DefaultTopicPrefix = "patents"

// Topic returns the topic for table.
func Topic(prefix, table string) string {
	return prefix + "." + table
}

// JSONRow implements the sarama.Encoder interface for a table row using
// json.
type JSONRow struct {
	Row interface{}
}

// Encode marshals the row to json.
func (r JSONRow) Encode() ([]byte, error) {
	return json.Marshal(r.Row)
}

// Length returns the length of the marshalled json.
func (r JSONRow) Length() int {
	bytes, _ := r.Encode()
	return len(bytes)
}

// NewConfig returns the producer configuration the Sink expects.
func NewConfig() *sarama.Config {
	conf := sarama.NewConfig()
	conf.Version = sarama.V0_10_0_0
	conf.Producer.Return.Successes = true
	conf.Producer.RequiredAcks = sarama.WaitForAll
	return conf
}

// Sink is a pdk.Sink which publishes every row of every table.
type Sink struct {
	producer sarama.SyncProducer
	prefix   string
}

// NewSink connects a producer to the Kafka hosts. Rows of table t go to
// the topic <prefix>.<t>.
func NewSink(hosts []string, prefix string) (*Sink, error) {
	producer, err := sarama.NewSyncProducer(hosts, NewConfig())
	if err != nil {
		return nil, errors.Wrap(err, "getting new producer")
	}
	return NewProducerSink(producer, prefix), nil
}

// NewProducerSink wraps an existing producer. The Sink takes ownership of
// it and closes it on Close.
func NewProducerSink(producer sarama.SyncProducer, prefix string) *Sink {
	return &Sink{producer: producer, prefix: prefix}
}

// Messages builds the messages for all rows in t, keyed by patent number.
func Messages(prefix string, t *pdk.Tables) []*sarama.ProducerMessage {
	msgs := make([]*sarama.ProducerMessage, 0, t.Len())
	for _, name := range pdk.TableNames {
		topic := Topic(prefix, name)
		for _, row := range t.Rows(name) {
			msgs = append(msgs, &sarama.ProducerMessage{
				Topic: topic,
				Key:   sarama.StringEncoder(patentNumber(row)),
				Value: JSONRow{Row: row},
			})
		}
	}
	return msgs
}

func patentNumber(row interface{}) string {
	switch r := row.(type) {
	case pdk.PatentRow:
		return r.PatentNumber
	case pdk.InventorRow:
		return r.PatentNumber
	case pdk.AssigneeRow:
		return r.PatentNumber
	case pdk.CitationRow:
		return r.PatentNumber
	}
	return ""
}

// Write implements pdk.Sink.
func (s *Sink) Write(t *pdk.Tables) error {
	msgs := Messages(s.prefix, t)
	if len(msgs) == 0 {
		return nil
	}
	return errors.Wrap(s.producer.SendMessages(msgs), "sending messages")
}

// Close closes the producer.
func (s *Sink) Close() error {
	return errors.Wrap(s.producer.Close(), "closing kafka producer")
}
