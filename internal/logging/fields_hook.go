package logging

import (
	"github.com/sirupsen/logrus"
)

// FieldsHook stamps fixed fields on every entry. Fields already set on the
// entry win.
type FieldsHook struct {
	fields map[string]string
}

func NewFieldsHook(fields map[string]string) *FieldsHook {
	return &FieldsHook{fields: fields}
}

func (h *FieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *FieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; ok {
			continue
		}
		entry.Data[k] = v
	}
	return nil
}
