package loanrepo

import (
	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/samber/mo"
)

// File names inside the data directory.
const (
	FileName        = "loans.dat"
	CounterFileName = "loan_counter.dat"
)

const (
	recordSize = 4 + 4 + dbpkg.DecimalSize + 4 + 4
	noAssignee = -1
)

type codec struct{}

func (codec) Size() int { return recordSize }

func (codec) Marshal(l domain.Loan) ([]byte, error) {
	w := dbpkg.NewRecordWriter(recordSize)
	w.Int32(l.ID)
	w.Int32(l.AccountID)
	w.Decimal(l.Amount)
	w.Int32(int32(l.Status))
	w.Int32(l.AssignedTo.OrElse(noAssignee))

	return w.Bytes()
}

func (codec) Unmarshal(b []byte) (domain.Loan, error) {
	r := dbpkg.NewRecordReader(b)

	l := domain.Loan{
		ID:        r.Int32(),
		AccountID: r.Int32(),
		Amount:    r.Decimal(),
		Status:    domain.LoanStatus(r.Int32()),
	}

	if staffID := r.Int32(); staffID != noAssignee {
		l.AssignedTo = mo.Some(staffID)
	}

	return l, r.Err()
}

type counterCodec struct{}

func (counterCodec) Size() int { return 4 }

func (counterCodec) Marshal(next int32) ([]byte, error) {
	w := dbpkg.NewRecordWriter(4)
	w.Int32(next)

	return w.Bytes()
}

func (counterCodec) Unmarshal(b []byte) (int32, error) {
	r := dbpkg.NewRecordReader(b)
	next := r.Int32()

	return next, r.Err()
}
