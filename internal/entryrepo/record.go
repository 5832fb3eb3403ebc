package entryrepo

import (
	"time"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
)

// FileName is the transaction log inside the data directory.
const FileName = "transactions.log"

const (
	descriptionSize = 100
	recordSize      = 4 + 8 + descriptionSize + dbpkg.DecimalSize
)

type codec struct{}

func (codec) Size() int { return recordSize }

func (codec) Marshal(e domain.Entry) ([]byte, error) {
	w := dbpkg.NewRecordWriter(recordSize)
	w.Int32(e.AccountID)
	w.Int64(e.Timestamp.UnixNano())
	w.String(e.Description, descriptionSize)
	w.Decimal(e.Balance)

	return w.Bytes()
}

func (codec) Unmarshal(b []byte) (domain.Entry, error) {
	r := dbpkg.NewRecordReader(b)

	e := domain.Entry{
		AccountID:   r.Int32(),
		Timestamp:   time.Unix(0, r.Int64()).UTC(),
		Description: r.String(descriptionSize),
		Balance:     r.Decimal(),
	}

	return e, r.Err()
}
