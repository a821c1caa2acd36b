package classifier

import "context"

// Request carries one unit of text to classify plus the context the external
// service is allowed to see: the sender's role, a short description of the
// transaction, and up to the last three conversation turns.
type Request struct {
	Content            string
	SenderRole         string
	TransactionContext string
	RecentHistory      []string
}

// Client port for the external classification service.
type Client interface {
	ClassifyText(ctx context.Context, req Request) (Result, error)
	ClassifyImage(ctx context.Context, data []byte, format string) (ImageAnalysis, error)
}

// TextExtractor pulls plain text out of a document attachment so it can be
// routed through the text classifier.
type TextExtractor interface {
	Extract(data []byte, filename string) (string, error)
}
