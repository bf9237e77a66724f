package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"holiday-service/internal/repositories"
)

// Store is a UnitOfWork over repository mocks. WithinTx runs fn directly and
// records whether fn failed, which stands in for a rollback.
type Store struct {
	Users         *UserRepositoryMock
	Profiles      *ProfileRepositoryMock
	Connections   *ConnectionRepositoryMock
	Conversations *ConversationRepositoryMock
	Messages      *MessageRepositoryMock
	Blocks        *BlockRepositoryMock
	Gatherings    *GatheringRepositoryMock

	Transactions int
	RolledBack   int
}

func NewStore() *Store {
	return &Store{
		Users:         new(UserRepositoryMock),
		Profiles:      new(ProfileRepositoryMock),
		Connections:   new(ConnectionRepositoryMock),
		Conversations: new(ConversationRepositoryMock),
		Messages:      new(MessageRepositoryMock),
		Blocks:        new(BlockRepositoryMock),
		Gatherings:    new(GatheringRepositoryMock),
	}
}

func (s *Store) Repos() repositories.Repos {
	return repositories.Repos{
		Users:         s.Users,
		Profiles:      s.Profiles,
		Connections:   s.Connections,
		Conversations: s.Conversations,
		Messages:      s.Messages,
		Blocks:        s.Blocks,
		Gatherings:    s.Gatherings,
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(repositories.Repos) error) error {
	s.Transactions++
	if err := fn(s.Repos()); err != nil {
		s.RolledBack++
		return err
	}
	return nil
}

// AssertExpectations checks every repository mock.
func (s *Store) AssertExpectations(t mock.TestingT) {
	s.Users.AssertExpectations(t)
	s.Profiles.AssertExpectations(t)
	s.Connections.AssertExpectations(t)
	s.Conversations.AssertExpectations(t)
	s.Messages.AssertExpectations(t)
	s.Blocks.AssertExpectations(t)
	s.Gatherings.AssertExpectations(t)
}

var _ repositories.UnitOfWork = (*Store)(nil)
