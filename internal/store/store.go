package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"atsResume/internal/metrics"
	"atsResume/internal/resume"
)

// ErrNoSnapshot 表示存储中还没有任何快照。
var ErrNoSnapshot = errors.New("no resume snapshot stored")

const persistTimeout = 5 * time.Second

// Snapshot 是一次整文档写入。
type Snapshot struct {
	ResumeID string
	Data     []byte
}

// Persister 持久化整份简历文档。实现需保证写入对调用方而言是整体替换。
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// State 是存储对外暴露的只读视图。
type State struct {
	Resume   resume.Resume   `json:"resume"`
	Template resume.Template `json:"template"`
	Score    int             `json:"score"`
}

// Observer 在每次成功变更后被调用。
type Observer func(State)

// ResumePatch 描述对顶层字段的浅合并，nil 字段保持不变。
// PersonalInfo 与 Sections 均为整体替换。
type ResumePatch struct {
	Name           *string
	PersonalInfo   *resume.PersonalInfo
	Sections       *[]resume.Section
	JobDescription *string
}

// SectionPatch 描述对分区的浅合并。
type SectionPatch struct {
	Title    *string
	Content  *string
	Items    *[]resume.Item
	Visible  *bool
	Required *bool
}

// Store 持有当前简历文档。所有变更串行执行，变更后重新计算分数并写入完整快照。
type Store struct {
	mu        sync.Mutex
	doc       resume.Resume
	template  resume.Template
	score     int
	persister Persister
	catalog   *resume.Catalog
	logger    *slog.Logger
	now       func() time.Time
	observers []Observer
}

// Option 配置 Store。
type Option func(*Store)

// WithLogger 指定日志器。
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock 替换时间来源，主要用于测试。
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New 从 persister 恢复文档；快照缺失、损坏或不符合结构时回落到默认骨架。
func New(ctx context.Context, persister Persister, catalog *resume.Catalog, opts ...Option) *Store {
	s := &Store{
		persister: persister,
		catalog:   catalog,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, writeBack := s.load(ctx)
	s.doc = doc
	s.template = s.lookupTemplate(doc.TemplateID)
	s.score = resume.CompletenessScore(doc)
	metrics.SetCompletenessScore(s.score)

	if writeBack {
		s.persistLocked(ctx, "init")
	}
	return s
}

func (s *Store) load(ctx context.Context) (resume.Resume, bool) {
	data, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		s.logger.Info("no resume snapshot found, using default scaffold")
		return resume.DefaultResume(s.now()), true
	case err != nil:
		s.logger.Warn("load resume snapshot failed, using default scaffold", slog.Any("error", err))
		return resume.DefaultResume(s.now()), false
	}

	if err := ValidateSnapshot(data); err != nil {
		s.logger.Warn("resume snapshot failed schema validation, discarding", slog.Any("error", err))
		return resume.DefaultResume(s.now()), true
	}

	doc, err := resume.Decode(data)
	if err != nil {
		s.logger.Warn("resume snapshot is corrupt, discarding", slog.Any("error", err))
		return resume.DefaultResume(s.now()), true
	}
	return doc, false
}

func (s *Store) lookupTemplate(id string) resume.Template {
	if t, ok := s.catalog.Get(id); ok {
		return t
	}
	return s.catalog.Default()
}

// State 返回当前状态的深拷贝。
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Score 返回当前完整度分数。
func (s *Store) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Subscribe 注册变更观察者。
func (s *Store) Subscribe(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// UpdateResume 浅合并顶层字段。Sections 中出现与分区类型不符的条目时整个补丁被忽略。
func (s *Store) UpdateResume(ctx context.Context, patch ResumePatch) State {
	return s.mutate(ctx, "update_resume", func(doc *resume.Resume) bool {
		if patch.Sections != nil && !sectionsValid(*patch.Sections) {
			s.logger.Warn("update resume ignored: section items do not match section kind")
			return false
		}
		if patch.Name != nil {
			doc.Name = *patch.Name
		}
		if patch.PersonalInfo != nil {
			doc.PersonalInfo = *patch.PersonalInfo
		}
		if patch.Sections != nil {
			doc.Sections = resume.Resume{Sections: *patch.Sections}.Clone().Sections
			if doc.Sections == nil {
				doc.Sections = []resume.Section{}
			}
		}
		if patch.JobDescription != nil {
			doc.JobDescription = *patch.JobDescription
		}
		return true
	})
}

// UpdateSection 浅合并指定分区；ID 不存在时不做任何事。
func (s *Store) UpdateSection(ctx context.Context, sectionID string, patch SectionPatch) State {
	return s.mutate(ctx, "update_section", func(doc *resume.Resume) bool {
		found := false
		for i := range doc.Sections {
			section := &doc.Sections[i]
			if section.ID != sectionID {
				continue
			}
			if patch.Items != nil && !itemsAccepted(*section, *patch.Items) {
				s.logger.Warn("update section ignored: items do not match section kind", slog.String("section_id", sectionID))
				return false
			}
			found = true
			if patch.Title != nil {
				section.Title = *patch.Title
			}
			if patch.Content != nil {
				section.Content = *patch.Content
			}
			if patch.Items != nil {
				section.Items = append([]resume.Item{}, (*patch.Items)...)
			}
			if patch.Visible != nil {
				section.Visible = *patch.Visible
			}
			if patch.Required != nil {
				section.Required = *patch.Required
			}
		}
		return found
	})
}

// AddItem 在分区末尾追加条目；分区不存在或类型不符时不做任何事。
func (s *Store) AddItem(ctx context.Context, sectionID string, item resume.Item) State {
	return s.mutate(ctx, "add_item", func(doc *resume.Resume) bool {
		changed := false
		for i := range doc.Sections {
			section := &doc.Sections[i]
			if section.ID != sectionID {
				continue
			}
			if !section.Accepts(item) {
				s.logger.Warn("add item ignored: item does not match section kind", slog.String("section_id", sectionID))
				return false
			}
			section.Items = append(section.Items, item)
			changed = true
		}
		return changed
	})
}

// RemoveItem 按下标删除条目；下标越界时静默忽略。
func (s *Store) RemoveItem(ctx context.Context, sectionID string, index int) State {
	return s.mutate(ctx, "remove_item", func(doc *resume.Resume) bool {
		changed := false
		for i := range doc.Sections {
			section := &doc.Sections[i]
			if section.ID != sectionID || index < 0 || index >= len(section.Items) {
				continue
			}
			section.Items = append(section.Items[:index:index], section.Items[index+1:]...)
			changed = true
		}
		return changed
	})
}

// MoveItem 将条目从 from 移到 to，其余条目保持相对顺序。
func (s *Store) MoveItem(ctx context.Context, sectionID string, from, to int) State {
	return s.mutate(ctx, "move_item", func(doc *resume.Resume) bool {
		changed := false
		for i := range doc.Sections {
			section := &doc.Sections[i]
			if section.ID != sectionID {
				continue
			}
			if items, ok := move(section.Items, from, to); ok {
				section.Items = items
				changed = true
			}
		}
		return changed
	})
}

// MoveSection 调整分区顺序。
func (s *Store) MoveSection(ctx context.Context, from, to int) State {
	return s.mutate(ctx, "move_section", func(doc *resume.Resume) bool {
		sections, ok := move(doc.Sections, from, to)
		if !ok {
			return false
		}
		doc.Sections = sections
		return true
	})
}

// ChangeTemplate 切换模板；模板不存在时记录日志并返回 false。
func (s *Store) ChangeTemplate(ctx context.Context, templateID string) (State, bool) {
	applied := false
	state := s.mutate(ctx, "change_template", func(doc *resume.Resume) bool {
		t, ok := s.catalog.Get(templateID)
		if !ok {
			s.logger.Warn("change template ignored: unknown template", slog.String("template_id", templateID))
			return false
		}
		s.template = t
		doc.TemplateID = t.ID
		applied = true
		return true
	})
	return state, applied
}

// Reset 用默认骨架替换当前文档。
func (s *Store) Reset(ctx context.Context) State {
	return s.mutate(ctx, "reset", func(doc *resume.Resume) bool {
		*doc = resume.DefaultResume(s.now())
		s.template = s.catalog.Default()
		doc.TemplateID = s.template.ID
		return true
	})
}

func (s *Store) mutate(ctx context.Context, op string, fn func(doc *resume.Resume) bool) State {
	s.mu.Lock()
	next := s.doc.Clone()
	if !fn(&next) {
		state := s.stateLocked()
		s.mu.Unlock()
		return state
	}

	next.UpdatedAt = s.now().UTC()
	s.doc = next
	s.score = resume.CompletenessScore(next)
	metrics.SetCompletenessScore(s.score)
	s.persistLocked(ctx, op)

	state := s.stateLocked()
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o(state)
	}
	return state
}

// persistLocked 写入整份快照。失败只记录，不影响变更本身。
func (s *Store) persistLocked(ctx context.Context, op string) {
	data, err := resume.Encode(s.doc)
	if err != nil {
		metrics.RecordSnapshotWrite(err)
		s.logger.Error("encode resume snapshot failed", slog.String("op", op), slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	err = s.persister.Save(ctx, Snapshot{ResumeID: s.doc.ID, Data: data})
	metrics.RecordSnapshotWrite(err)
	if err != nil {
		s.logger.Error("persist resume snapshot failed",
			slog.String("op", op),
			slog.String("resume_id", s.doc.ID),
			slog.Any("error", err),
		)
	}
}

func (s *Store) stateLocked() State {
	return State{
		Resume:   s.doc.Clone(),
		Template: s.template,
		Score:    s.score,
	}
}

func move[T any](list []T, from, to int) ([]T, bool) {
	if from < 0 || from >= len(list) {
		return list, false
	}
	to = max(0, min(to, len(list)-1))
	if from == to {
		return list, false
	}
	out := make([]T, 0, len(list))
	moved := list[from]
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, true
}

func sectionsValid(sections []resume.Section) bool {
	for _, section := range sections {
		if !itemsAccepted(section, section.Items) {
			return false
		}
	}
	return true
}

func itemsAccepted(section resume.Section, items []resume.Item) bool {
	for _, item := range items {
		if !section.Accepts(item) {
			return false
		}
	}
	return true
}
