package domain

// Snapshot — сырой ответ поставщика, сохраняемый в объектное хранилище для аудита.
type Snapshot struct {
	ObjectKey   string
	Bytes       []byte
	ContentType string
}

func NewSnapshot(objectKey string, data []byte) *Snapshot {
	return &Snapshot{
		ObjectKey:   objectKey,
		Bytes:       data,
		ContentType: "application/json",
	}
}
