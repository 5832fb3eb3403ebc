package accountrepo

import (
	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/JMan003/banking-system-project/pkg/passpkg"
)

// FileName is the accounts file inside the data directory.
const FileName = "accounts.dat"

const (
	ownerSize  = domain.MaxOwnerLen
	recordSize = 4 + ownerSize + passpkg.HashSize + dbpkg.DecimalSize + 1 + 1
)

type codec struct{}

func (codec) Size() int { return recordSize }

func (codec) Marshal(a domain.Account) ([]byte, error) {
	w := dbpkg.NewRecordWriter(recordSize)
	w.Int32(a.ID)
	w.String(a.Owner, ownerSize)
	w.String(a.PIN, passpkg.HashSize)
	w.Decimal(a.Balance)
	w.Bool(a.Active)
	w.Skip(1)

	return w.Bytes()
}

func (codec) Unmarshal(b []byte) (domain.Account, error) {
	r := dbpkg.NewRecordReader(b)

	a := domain.Account{
		ID:      r.Int32(),
		Owner:   r.String(ownerSize),
		PIN:     r.String(passpkg.HashSize),
		Balance: r.Decimal(),
		Active:  r.Bool(),
	}

	return a, r.Err()
}

func byID(id int32) func(domain.Account) bool {
	return func(a domain.Account) bool { return a.ID == id }
}
