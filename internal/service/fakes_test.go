package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lostandfound/backend/internal/domain"
)

// memPublications is an in-memory domain.PublicationRepository.
// Reads return deep copies so callers cannot mutate stored state.
type memPublications struct {
	mu    sync.Mutex
	items map[string]*domain.Publication

	inserts   int
	findErr   error
	lastFound domain.PublicationFilter
}

func newMemPublications() *memPublications {
	return &memPublications{items: map[string]*domain.Publication{}}
}

func clonePublication(p *domain.Publication) *domain.Publication {
	c := *p
	c.Votes = append([]domain.Vote{}, p.Votes...)
	if p.SubjectPhotoURL != nil {
		url := *p.SubjectPhotoURL
		c.SubjectPhotoURL = &url
	}
	return &c
}

func (r *memPublications) Insert(_ context.Context, p *domain.Publication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	r.items[p.ExposedID] = clonePublication(p)
	return nil
}

func (r *memPublications) Replace(_ context.Context, p *domain.Publication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ExposedID]; !ok {
		return domain.NotFound("Publication not found.")
	}
	r.items[p.ExposedID] = clonePublication(p)
	return nil
}

func (r *memPublications) GetByExposedID(_ context.Context, id string) (*domain.Publication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return clonePublication(p), nil
}

func (r *memPublications) DeleteByExposedID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.NotFound("Publication not found.")
	}
	delete(r.items, id)
	return nil
}

func (r *memPublications) Find(_ context.Context, filter domain.PublicationFilter) ([]*domain.Publication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFound = filter
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*domain.Publication
	for _, p := range r.items {
		if filter.Matches(p) {
			out = append(out, clonePublication(p))
		}
	}
	return out, nil
}

func (r *memPublications) update(id string, fn func(p *domain.Publication) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return domain.NotFound("Publication not found.")
	}
	return fn(p)
}

func (r *memPublications) UpdatePhotoURL(_ context.Context, id string, url *string, modifiedAt time.Time) error {
	return r.update(id, func(p *domain.Publication) error {
		p.SubjectPhotoURL = url
		p.LastModificationDate = modifiedAt
		return nil
	})
}

func (r *memPublications) UpdateState(_ context.Context, id string, state domain.PublicationState, modifiedAt time.Time) error {
	return r.update(id, func(p *domain.Publication) error {
		p.State = state
		p.LastModificationDate = modifiedAt
		return nil
	})
}

func (r *memPublications) InsertVote(_ context.Context, id string, vote domain.Vote) error {
	return r.update(id, func(p *domain.Publication) error {
		p.Votes = append(p.Votes, vote)
		return nil
	})
}

func (r *memPublications) UpdateVote(_ context.Context, id string, vote domain.Vote) error {
	return r.update(id, func(p *domain.Publication) error {
		v := p.FindVote(vote.VoterID)
		if v == nil {
			return domain.NotFound("Vote not found.")
		}
		v.Rating = vote.Rating
		return nil
	})
}

func (r *memPublications) DeleteVote(_ context.Context, id string, voterID string) error {
	return r.update(id, func(p *domain.Publication) error {
		kept := p.Votes[:0]
		for _, v := range p.Votes {
			if v.VoterID != voterID {
				kept = append(kept, v)
			}
		}
		p.Votes = kept
		return nil
	})
}

func (r *memPublications) stored(id string) *domain.Publication {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.items[id]; ok {
		return clonePublication(p)
	}
	return nil
}

// memCategories is an in-memory domain.CategoryRepository
type memCategories struct {
	items map[string]*domain.Category
}

func newMemCategories(cats ...*domain.Category) *memCategories {
	r := &memCategories{items: map[string]*domain.Category{}}
	for _, c := range cats {
		r.items[c.ExposedID] = c
	}
	return r
}

func (r *memCategories) GetByExposedID(_ context.Context, id string) (*domain.Category, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memCategories) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.items[id]
	return ok, nil
}

func (r *memCategories) List(_ context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCategories) Upsert(_ context.Context, c *domain.Category) error {
	r.items[c.ExposedID] = c
	return nil
}

// memStorage is an in-memory domain.FileStorage
type memStorage struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	deleted   []string
	uploadErr error
	seq       int
}

func newMemStorage() *memStorage {
	return &memStorage{blobs: map[string][]byte{}}
}

func (s *memStorage) Upload(_ context.Context, f *domain.File) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.seq++
	name := fmt.Sprintf("blob-%d.jpg", s.seq)
	s.blobs[name] = f.Content
	return "http://storage.local/photos/" + name, nil
}

func (s *memStorage) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, name)
	delete(s.blobs, name)
	return nil
}

// memUsers is an in-memory domain.UserRepository
type memUsers struct {
	mu    sync.Mutex
	users []*domain.User
}

func (r *memUsers) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username || existing.UserID == u.UserID {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	r.users = append(r.users, &cp)
	return nil
}

func (r *memUsers) find(match func(u *domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUsers) GetByUserID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.UserID == id })
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

// memRefreshTokens is an in-memory domain.RefreshTokenRepository
type memRefreshTokens struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newMemRefreshTokens() *memRefreshTokens {
	return &memRefreshTokens{tokens: map[string]*domain.RefreshToken{}}
}

func (r *memRefreshTokens) Create(_ context.Context, t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tokens[t.TokenHash] = &cp
	return nil
}

func (r *memRefreshTokens) FindByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	if !ok || t.Revoked {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *memRefreshTokens) RevokeByHash(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[hash]; ok {
		t.Revoked = true
	}
	return nil
}

// memProfiles is an in-memory domain.ProfileRepository
type memProfiles struct {
	mu        sync.Mutex
	items     map[string]*domain.Profile
	createErr error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{items: map[string]*domain.Profile{}}
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	c := *p
	c.Comments = append([]domain.ProfileComment{}, p.Comments...)
	return &c
}

func (r *memProfiles) Create(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.items[p.UserID]; ok {
		return domain.ErrDuplicate
	}
	r.items[p.UserID] = cloneProfile(p)
	return nil
}

func (r *memProfiles) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	return cloneProfile(p), nil
}

func (r *memProfiles) Replace(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.UserID]; !ok {
		return domain.NotFound("Profile not found.")
	}
	r.items[p.UserID] = cloneProfile(p)
	return nil
}

func (r *memProfiles) update(userID string, fn func(p *domain.Profile) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[userID]
	if !ok {
		return domain.NotFound("Profile not found.")
	}
	return fn(p)
}

func (r *memProfiles) UpdatePictureURL(_ context.Context, userID string, url *string, modifiedAt time.Time) error {
	return r.update(userID, func(p *domain.Profile) error {
		p.PictureURL = url
		p.UpdatedAt = modifiedAt
		return nil
	})
}

func (r *memProfiles) AddComment(_ context.Context, userID string, c domain.ProfileComment) error {
	return r.update(userID, func(p *domain.Profile) error {
		p.Comments = append(p.Comments, c)
		return nil
	})
}

func (r *memProfiles) UpdateComment(_ context.Context, userID string, c domain.ProfileComment) error {
	return r.update(userID, func(p *domain.Profile) error {
		existing := p.FindComment(c.AuthorID)
		if existing == nil {
			return domain.NotFound("Comment not found.")
		}
		existing.Content = c.Content
		existing.ProfileRating = c.ProfileRating
		return nil
	})
}

func (r *memProfiles) DeleteComment(_ context.Context, userID string, authorID string) error {
	return r.update(userID, func(p *domain.Profile) error {
		kept := p.Comments[:0]
		for _, c := range p.Comments {
			if c.AuthorID != authorID {
				kept = append(kept, c)
			}
		}
		p.Comments = kept
		return nil
	})
}

// memChats is an in-memory domain.ChatRepository
type memChats struct {
	mu    sync.Mutex
	items map[string]*domain.Chat

	// insertRace stores a competing chat for the pair before Insert reports a duplicate
	insertRace *domain.Chat
	markReads  int
}

func newMemChats() *memChats {
	return &memChats{items: map[string]*domain.Chat{}}
}

func cloneChat(c *domain.Chat) *domain.Chat {
	cp := *c
	cp.Members = append([]domain.ChatMember{}, c.Members...)
	if c.LastMessage != nil {
		last := *c.LastMessage
		cp.LastMessage = &last
	}
	return &cp
}

func (r *memChats) Insert(_ context.Context, c *domain.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertRace != nil {
		r.items[r.insertRace.MemberKey] = cloneChat(r.insertRace)
		r.insertRace = nil
	}
	if _, ok := r.items[c.MemberKey]; ok {
		return domain.ErrDuplicate
	}
	r.items[c.MemberKey] = cloneChat(c)
	return nil
}

func (r *memChats) GetByMemberKey(_ context.Context, key string) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[key]
	if !ok {
		return nil, nil
	}
	return cloneChat(c), nil
}

func (r *memChats) ListByMember(_ context.Context, userID string) ([]*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Chat
	for _, c := range r.items {
		if c.Member(userID) != nil {
			out = append(out, cloneChat(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastModificationDate.After(out[j].LastModificationDate)
	})
	return out, nil
}

func (r *memChats) update(chatID string, fn func(c *domain.Chat) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.ExposedID == chatID {
			return fn(c)
		}
	}
	return domain.NotFound("Chat not found.")
}

func (r *memChats) RecordMessage(_ context.Context, chatID string, msg domain.Message, recipientID string) error {
	return r.update(chatID, func(c *domain.Chat) error {
		c.LastMessage = &msg
		c.LastModificationDate = msg.CreationTime
		for i := range c.Members {
			switch c.Members[i].UserID {
			case msg.AuthorID:
				c.Members[i].Unread = false
			case recipientID:
				c.Members[i].Unread = true
			}
		}
		return nil
	})
}

func (r *memChats) MarkRead(_ context.Context, chatID, userID string) error {
	return r.update(chatID, func(c *domain.Chat) error {
		r.markReads++
		if m := c.Member(userID); m != nil {
			m.Unread = false
		}
		return nil
	})
}

func (r *memChats) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.items {
		if m := c.Member(userID); m != nil && m.Unread {
			n++
		}
	}
	return n, nil
}

// memMessages is an in-memory domain.MessageRepository
type memMessages struct {
	mu    sync.Mutex
	items []*domain.Message
	lists int
}

func (r *memMessages) Insert(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.items = append(r.items, &cp)
	return nil
}

func (r *memMessages) byChat(chatID string) []*domain.Message {
	var out []*domain.Message
	for _, m := range r.items {
		if m.ChatID == chatID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID > out[j].ClientID })
	return out
}

func (r *memMessages) CountByChat(_ context.Context, chatID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byChat(chatID))), nil
}

func (r *memMessages) ListByChat(_ context.Context, chatID string, skip, limit int) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	all := r.byChat(chatID)
	if skip >= len(all) {
		return nil, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

// memNotifier records notifications instead of publishing them
type memNotifier struct {
	mu   sync.Mutex
	sent map[string][]*domain.Message
	err  error
}

func newMemNotifier() *memNotifier {
	return &memNotifier{sent: map[string][]*domain.Message{}}
}

func (n *memNotifier) NotifyMessage(_ context.Context, recipientID string, msg *domain.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent[recipientID] = append(n.sent[recipientID], msg)
	return nil
}

var errBoom = errors.New("boom")
