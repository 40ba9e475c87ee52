// Package catalog 是規則組目錄：把一或多個 fs.FS 中的設定檔以名稱登記，
// 登記時就解析並驗證，之後只讀。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/spec"
)

var ErrDupName = errs.NewFatal("duplicate rules name")

// Entry 一組規則：名稱與對應的設定檔名。
type Entry struct {
	Name       string
	ConfigName string
}

type Summary struct {
	Name  string            `json:"name"`
	Title string            `json:"title"`
	Games []spec.Kind       `json:"games"`
	Grant spec.GrantSetting `json:"grant"`
}

type Catalog struct {
	byName   map[string]Entry
	settings map[string]*spec.Settings
	names    []string            // 用來穩定排序
	unique   map[string]struct{} // 一個設定檔只能對應一組規則
	config   *multiFS
	frozen   bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byName:   map[string]Entry{},
		settings: map[string]*spec.Settings{},
		names:    make([]string, 0, 8),
		unique:   map[string]struct{}{},
		config:   multFS,
	}, nil
}

// Scan 把所有來源中的設定檔以「去掉副檔名的檔名」登記。
func (c *Catalog) Scan() error {
	files := c.config.Names()
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, Entry{
			Name:       strings.TrimSuffix(f, filepath.Ext(f)),
			ConfigName: f,
		})
	}
	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return c.Register(entries...)
}

// Register 登記並解析規則組；任何一組失敗則全部不登記。
func (c *Catalog) Register(metas ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	parsed := make([]*spec.Settings, len(metas))
	for i := range metas {
		meta := &metas[i]
		meta.Name = normalize(meta.Name)
		if meta.Name == "" {
			return errs.NewFatal("rules name required")
		}
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		src, ok := c.config.GetFS(meta.ConfigName)
		if !ok {
			return errs.Fatalf("config file not found: %s", meta.ConfigName)
		}
		if _, ok := c.byName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := seenName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := c.unique[meta.ConfigName]; ok {
			return errs.Fatalf("duplicate config name: %s", meta.ConfigName)
		}
		if _, ok := seenCfg[meta.ConfigName]; ok {
			return errs.Fatalf("duplicate config name: %s", meta.ConfigName)
		}
		s, err := spec.LoadSettings(src, meta.ConfigName)
		if err != nil {
			return errs.Wrap(err, "register rules "+meta.Name)
		}
		parsed[i] = s
		seenName[meta.Name] = struct{}{}
		seenCfg[meta.ConfigName] = struct{}{}
	}
	for i, meta := range metas {
		c.unique[meta.ConfigName] = struct{}{}
		c.byName[meta.Name] = meta
		c.settings[meta.Name] = parsed[i]
		c.names = append(c.names, meta.Name)
	}
	sort.Strings(c.names)
	return nil
}

func (c *Catalog) Get(name string) (Entry, bool) {
	m, ok := c.byName[normalize(name)]
	return m, ok
}

// Settings 回傳已解析的規則。回傳值為共用實例，呼叫端不可修改。
func (c *Catalog) Settings(name string) (*spec.Settings, error) {
	s, ok := c.settings[normalize(name)]
	if !ok {
		return nil, errs.Warnf("rules %q does not exist in catalog", name)
	}
	return s, nil
}

func (c *Catalog) Names() []string {
	if len(c.names) == 0 {
		return nil
	}
	return append([]string(nil), c.names...)
}

func (c *Catalog) All() []Entry {
	m := make([]Entry, 0, len(c.names))
	for _, n := range c.names {
		m = append(m, c.byName[n])
	}
	return m
}

func (c *Catalog) Summary() []Summary {
	out := make([]Summary, 0, len(c.names))
	for _, n := range c.names {
		s := c.settings[n]
		out = append(out, Summary{
			Name:  n,
			Title: s.Name,
			Games: append([]spec.Kind(nil), s.Games...),
			Grant: s.Grant,
		})
	}
	return out
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 不能包含路徑
	if strings.ContainsAny(file, `/\:`) {
		return errs.Fatalf("invalid config filename: %q (must be a basename; no / \\ :)", file)
	}
	lower := strings.ToLower(file)
	if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")) {
		return errs.Fatalf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file)
	}
	if strings.HasPrefix(file, ".") {
		return errs.Fatalf("invalid config filename: %q (cannot start with '.')", file)
	}
	return nil
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.Fatalf("fs[%d] is nil", i)
		}
	}
	m := &multiFS{
		src:   src,
		index: make(map[string]int, 16),
	}
	for i := range src {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// 設定目錄必須是扁平的
				if path == "." {
					return nil
				}
				return errs.Fatalf("config FS must be flat (no subdirectories): %q", path)
			}
			lower := strings.ToLower(path)
			if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}

// Names 回傳所有已索引的設定檔名，已排序。
func (m *multiFS) Names() []string {
	out := make([]string, 0, len(m.index))
	for n := range m.index {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
