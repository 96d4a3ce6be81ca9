package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore — хранилище конфигурации в YAML-файле.
//
// Файл — плоский mapping ключ → скаляр:
//
//	Log.Level: NOTICE
//	TRX.Port: 5700
//	TRX.IP: 127.0.0.1
//
// Новый ключ дописывается в конец файла, и Remove такого ключа вырезает
// ровно дописанные байты: пара Set/Remove оставляет файл байт в байт
// прежним. Ключи, бывшие в файле при открытии, меняются через yaml.Node,
// что сохраняет комментарии и порядок ключей. Файл заменяется атомарно
// через временный файл и rename.
type FileStore struct {
	path string

	mu     sync.RWMutex
	data   []byte
	values map[string]any

	// added — ключи, дописанные этим FileStore, и их место в data.
	added map[string]segment
}

// segment — дописанный фрагмент файла. sep — фрагмент начинается с
// перевода строки, которого не было в конце файла.
type segment struct {
	off  int
	text []byte
	sep  bool
}

// OpenFile читает YAML-файл конфигурации.
func OpenFile(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	values, err := parseValues(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &FileStore{
		path:   path,
		data:   data,
		values: values,
		added:  make(map[string]segment),
	}, nil
}

func parseValues(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// Set записывает значение ключа и сохраняет файл.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove удаляет ключ и сохраняет файл. Отсутствующий ключ не ошибка.
func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.remove(key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// GetString возвращает скалярное значение ключа как строку.
func (s *FileStore) GetString(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}

	switch val := v.(type) {
	case string:
		return val, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(val), nil
	default:
		return "", fmt.Errorf("%s is %T: %w", key, v, ErrTypeMismatch)
	}
}

// GetInt возвращает целочисленное значение ключа.
func (s *FileStore) GetInt(_ context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}

	switch val := v.(type) {
	case int:
		return val, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%s=%q: %w", key, val, ErrTypeMismatch)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s is %T: %w", key, v, ErrTypeMismatch)
	}
}

// Close ничего не держит открытым.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) set(key, value string) error {
	_, exists := s.values[key]
	if exists && !s.isAdded(key) {
		return s.rewrite(setPair(key, value))
	}

	base, added := s.data, s.added
	if exists {
		base, added = s.without(key)
	}

	sep := len(base) > 0 && base[len(base)-1] != '\n'
	text, err := encodePair(sep, key, value)
	if err != nil {
		return err
	}
	next := make([]byte, 0, len(base)+len(text))
	next = append(next, base...)
	next = append(next, text...)

	// Дописать нельзя, если корень не блочный mapping (например, "{}")
	values, err := parseValues(next)
	if err != nil {
		return s.rewrite(setPair(key, value))
	}
	if _, ok := values[key]; !ok {
		return s.rewrite(setPair(key, value))
	}

	if err := s.write(next); err != nil {
		return err
	}
	added[key] = segment{off: len(base), text: text, sep: sep}
	s.data, s.values, s.added = next, values, added
	return nil
}

func (s *FileStore) remove(key string) error {
	if _, ok := s.values[key]; !ok {
		return nil
	}
	if !s.isAdded(key) {
		return s.rewrite(deletePair(key))
	}

	next, added := s.without(key)
	values, err := parseValues(next)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.data, s.values, s.added = next, values, added
	return nil
}

// isAdded сообщает, что key дописан этим FileStore и его фрагмент цел.
func (s *FileStore) isAdded(key string) bool {
	seg, ok := s.added[key]
	if !ok {
		return false
	}
	end := seg.off + len(seg.text)
	return end <= len(s.data) && bytes.Equal(s.data[seg.off:end], seg.text)
}

// without возвращает data без фрагмента key и фрагменты со сдвинутыми
// смещениями. Состояние FileStore не меняется.
//
// Если фрагмент начинается с добавленного перевода строки, а сразу за ним
// идёт другой фрагмент, перевод строки остаётся и переходит к нему.
func (s *FileStore) without(key string) ([]byte, map[string]segment) {
	seg := s.added[key]
	from, end := seg.off, seg.off+len(seg.text)

	var heir string
	if seg.sep {
		for k, other := range s.added {
			if k != key && other.off == end {
				heir = k
			}
		}
		if heir != "" {
			from++
		}
	}
	cut := end - from

	next := make([]byte, 0, len(s.data)-cut)
	next = append(next, s.data[:from]...)
	next = append(next, s.data[end:]...)

	added := make(map[string]segment, len(s.added))
	for k, other := range s.added {
		if k == key {
			continue
		}
		if other.off >= end {
			other.off -= cut
		}
		if k == heir {
			other.off = seg.off
			other.text = append([]byte{'\n'}, other.text...)
			other.sep = true
		}
		added[k] = other
	}
	return next, added
}

// encodePair кодирует "key: value\n", с sep — с переводом строки перед ним.
func encodePair(sep bool, key, value string) ([]byte, error) {
	var buf bytes.Buffer
	if sep {
		buf.WriteByte('\n')
	}

	enc := yaml.NewEncoder(&buf)
	pair := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{strNode(key), strNode(value)}}
	if err := enc.Encode(pair); err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return buf.Bytes(), nil
}

// rewrite меняет корневой mapping через yaml.Node и пишет документ
// заново. Комментарии и порядок ключей сохраняются, смещения дописанных
// фрагментов после этого недействительны.
func (s *FileStore) rewrite(edit func(m *yaml.Node)) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(s.data, &doc); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}

	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return fmt.Errorf("top level of %s is not a mapping", s.path)
	}
	edit(m)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	next := buf.Bytes()
	values, err := parseValues(next)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.data, s.values = next, values
	s.added = make(map[string]segment)
	return nil
}

// setPair заменяет значение key или добавляет пару в конец mapping.
func setPair(key, value string) func(m *yaml.Node) {
	return func(m *yaml.Node) {
		for i := 0; i+1 < len(m.Content); i += 2 {
			if m.Content[i].Value == key {
				// без тега: тип значения определяется по тексту, как у
				// ключа, записанного руками
				old := m.Content[i+1]
				m.Content[i+1] = &yaml.Node{
					Kind:        yaml.ScalarNode,
					Value:       value,
					LineComment: old.LineComment,
					FootComment: old.FootComment,
				}
				return
			}
		}
		m.Content = append(m.Content, strNode(key), strNode(value))
	}
}

// deletePair удаляет пару key из mapping.
func deletePair(key string) func(m *yaml.Node) {
	return func(m *yaml.Node) {
		for i := 0; i+1 < len(m.Content); i += 2 {
			if m.Content[i].Value == key {
				m.Content = append(m.Content[:i], m.Content[i+2:]...)
				return
			}
		}
	}
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// write атомарно заменяет файл содержимым data.
func (s *FileStore) write(data []byte) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return err
	}

	// rename заменит и read-only файл, поэтому права проверяем явно
	f, err := os.OpenFile(s.path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	f.Close()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".trxconf-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, s.path)
}
