package application

import (
	"context"
	"sync"

	"github.com/dfryer1193/campusnav/navigation/domain"
)

// DirectoryService serializes every call on a single Directory.
//
// The lock is held for the whole call, store round trips included, so a read
// never observes a reload in progress. Reloads are rare and reads are cheap,
// which keeps a single mutex acceptable.
type DirectoryService struct {
	mu  sync.Mutex
	dir *Directory
}

func NewDirectoryService(dir *Directory) *DirectoryService {
	return &DirectoryService{dir: dir}
}

func (s *DirectoryService) Initialize(ctx context.Context, classroomPayload, imagePayload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Initialize(ctx, classroomPayload, imagePayload)
}

func (s *DirectoryService) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Ready()
}

func (s *DirectoryService) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Ping(ctx)
}

func (s *DirectoryService) ListClassrooms(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.ListClassrooms(ctx)
}

func (s *DirectoryService) GetClassroom(ctx context.Context, name string) (*domain.ResolvedClassroom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.GetClassroom(ctx, name)
}

func (s *DirectoryService) ClassroomListJSON(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.ClassroomListJSON(ctx)
}

func (s *DirectoryService) ClassroomJSON(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.ClassroomJSON(ctx, name)
}
