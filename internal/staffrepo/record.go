package staffrepo

import (
	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/JMan003/banking-system-project/pkg/passpkg"
)

// FileName is the staff file inside the data directory.
const FileName = "staff.dat"

const (
	nameSize   = domain.MaxStaffNameLen
	recordSize = 4 + 2*nameSize + passpkg.HashSize + 4
)

type codec struct{}

func (codec) Size() int { return recordSize }

func (codec) Marshal(s domain.Staff) ([]byte, error) {
	w := dbpkg.NewRecordWriter(recordSize)
	w.Int32(s.ID)
	w.String(s.FirstName, nameSize)
	w.String(s.LastName, nameSize)
	w.String(s.Password, passpkg.HashSize)
	w.Int32(int32(s.Role))

	return w.Bytes()
}

func (codec) Unmarshal(b []byte) (domain.Staff, error) {
	r := dbpkg.NewRecordReader(b)

	s := domain.Staff{
		ID:        r.Int32(),
		FirstName: r.String(nameSize),
		LastName:  r.String(nameSize),
		Password:  r.String(passpkg.HashSize),
		Role:      domain.Role(r.Int32()),
	}

	return s, r.Err()
}
