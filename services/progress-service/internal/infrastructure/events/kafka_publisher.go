package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kursus/services/progress-service/internal/domain"

	"github.com/segmentio/kafka-go"
)

// CertificateIssued is published once per newly inserted certificate.
type CertificateIssued struct {
	CertificateID     string    `json:"certificate_id"`
	CertificateNumber string    `json:"certificate_number"`
	UserID            string    `json:"user_id"`
	CourseID          string    `json:"course_id"`
	CourseTitle       string    `json:"course_title"`
	IssueDate         time.Time `json:"issue_date"`
}

func NewCertificateIssued(c *domain.Certificate) CertificateIssued {
	return CertificateIssued{
		CertificateID:     c.ID,
		CertificateNumber: c.CertificateNumber,
		UserID:            c.UserID,
		CourseID:          c.CourseID,
		CourseTitle:       c.CourseTitle,
		IssueDate:         c.IssueDate,
	}
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
	}, nil
}

// CertificateIssued keys the message by user so a learner's events stay ordered.
func (p *KafkaPublisher) CertificateIssued(ctx context.Context, c *domain.Certificate) error {
	payload, err := json.Marshal(NewCertificateIssued(c))
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(c.UserID),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
