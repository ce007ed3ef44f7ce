package notifier

import (
	"context"
	"strconv"

	"creditpool/core"
	"creditpool/pkg/id"
	"creditpool/pkg/resthttp"
	"creditpool/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
)

const checkpointKey = "notifier_checkpoint"

// Notifier posts ledger notifications to a webhook in id order
type Notifier struct {
	*worker.BaseJob
	endpoint     string
	batch        int
	transactions core.TransactionStore
	properties   property.Store
}

// New new notifier firing on spec
func New(location, spec, endpoint string, batch int, transactions core.TransactionStore, properties property.Store) (*Notifier, error) {
	job, err := worker.NewBaseJob("notifier", location, spec)
	if err != nil {
		return nil, err
	}

	if batch <= 0 {
		batch = 100
	}

	n := &Notifier{
		BaseJob:      job,
		endpoint:     endpoint,
		batch:        batch,
		transactions: transactions,
		properties:   properties,
	}
	job.OnWork = n.onWork
	return n, nil
}

func (w *Notifier) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	v, err := w.properties.Get(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("property.Get", checkpointKey)
		return err
	}

	from := v.Int64()

	transactions, err := w.transactions.List(ctx, from, w.batch)
	if err != nil {
		log.WithError(err).Errorln("transactions.List")
		return err
	}

	if len(transactions) == 0 {
		return nil
	}

	if w.endpoint != "" {
		// redelivery of a batch reuses its request id
		requestID := id.TraceIDFrom("notify", strconv.FormatInt(from, 10), strconv.FormatInt(transactions[len(transactions)-1].ID, 10))
		body := map[string]interface{}{"transactions": transactions}
		if _, err := resthttp.Execute(resthttp.WithRequestID(ctx, requestID), "POST", w.endpoint, body, nil); err != nil {
			log.WithError(err).Errorln("post notifications")
			return err
		}
	}

	last := transactions[len(transactions)-1].ID
	if err := w.properties.Save(ctx, checkpointKey, last); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
		return err
	}

	log.Debugf("delivered %d notifications up to %d", len(transactions), last)
	return nil
}
