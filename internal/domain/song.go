package domain

// Part is one voice part of a song. Order within Song.Parts is meaningful.
type Part struct {
	Long  string `json:"long"`
	Short string `json:"short"`
}

// Song 曲目（对应 songs 表，parts 以 JSONB 存储）
type Song struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Parts []Part `json:"parts" db:"parts"`
}

// PartByLong finds a defined part by its long name.
func (s Song) PartByLong(long string) (Part, bool) {
	for _, p := range s.Parts {
		if p.Long == long {
			return p, true
		}
	}
	return Part{}, false
}

// HasPart reports whether long names a part defined on the song.
func (s Song) HasPart(long string) bool {
	_, ok := s.PartByLong(long)
	return ok
}
