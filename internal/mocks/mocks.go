package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"holiday-service/internal/models"
	"holiday-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var out []models.User
	if val := args.Get(0); val != nil {
		out = val.([]models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) GetByExternalRef(ctx context.Context, ref string) (models.User, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) GetByStableID(ctx context.Context, stableID string) (models.User, error) {
	args := m.Called(ctx, stableID)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) Create(ctx context.Context, identity models.Identity) (models.User, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) UpdateIdentity(ctx context.Context, id uuid.UUID, identity models.Identity) (models.User, error) {
	args := m.Called(ctx, id, identity)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) Get(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *ProfileRepositoryMock) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.Profile, error) {
	args := m.Called(ctx, userIDs)
	var out []models.Profile
	if val := args.Get(0); val != nil {
		out = val.([]models.Profile)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) Browse(ctx context.Context, viewerID uuid.UUID, filter models.BrowseFilter) ([]models.Profile, error) {
	args := m.Called(ctx, viewerID, filter)
	var out []models.Profile
	if val := args.Get(0); val != nil {
		out = val.([]models.Profile)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) Upsert(ctx context.Context, profile models.Profile) (models.Profile, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *ProfileRepositoryMock) EnsureDraft(ctx context.Context, draft models.Profile) (models.Profile, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *ProfileRepositoryMock) AddPhoto(ctx context.Context, userID uuid.UUID, url string, at time.Time) (models.Profile, error) {
	args := m.Called(ctx, userID, url, at)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *ProfileRepositoryMock) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	return m.Called(ctx, userID, verified).Error(0)
}

func (m *ProfileRepositoryMock) Delete(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type ConnectionRepositoryMock struct {
	mock.Mock
}

func (m *ConnectionRepositoryMock) Create(ctx context.Context, senderID, recipientID uuid.UUID, date string, at time.Time) (models.Connection, error) {
	args := m.Called(ctx, senderID, recipientID, date, at)
	return args.Get(0).(models.Connection), args.Error(1)
}

func (m *ConnectionRepositoryMock) Get(ctx context.Context, id uuid.UUID) (models.Connection, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Connection), args.Error(1)
}

func (m *ConnectionRepositoryMock) GetForUpdate(ctx context.Context, id uuid.UUID) (models.Connection, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Connection), args.Error(1)
}

func (m *ConnectionRepositoryMock) SetStatus(ctx context.Context, id uuid.UUID, status models.ConnectionStatus, at time.Time) error {
	return m.Called(ctx, id, status, at).Error(0)
}

func (m *ConnectionRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ConnectionRepositoryMock) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Connection, error) {
	args := m.Called(ctx, userID)
	var out []models.Connection
	if val := args.Get(0); val != nil {
		out = val.([]models.Connection)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) Between(ctx context.Context, userID, otherID uuid.UUID) ([]models.Connection, error) {
	args := m.Called(ctx, userID, otherID)
	var out []models.Connection
	if val := args.Get(0); val != nil {
		out = val.([]models.Connection)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) HasAccepted(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *ConnectionRepositoryMock) AcceptedCounterparts(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	var out []uuid.UUID
	if val := args.Get(0); val != nil {
		out = val.([]uuid.UUID)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) CreateIfAbsent(ctx context.Context, guestID, hostID uuid.UUID, status models.ConversationStatus, at time.Time) (models.Conversation, bool, error) {
	args := m.Called(ctx, guestID, hostID, status, at)
	return args.Get(0).(models.Conversation), args.Bool(1), args.Error(2)
}

func (m *ConversationRepositoryMock) Get(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Conversation), args.Error(1)
}

func (m *ConversationRepositoryMock) GetForUpdate(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Conversation), args.Error(1)
}

func (m *ConversationRepositoryMock) GetByPair(ctx context.Context, userID, otherID uuid.UUID) (models.Conversation, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Get(0).(models.Conversation), args.Error(1)
}

func (m *ConversationRepositoryMock) IsParticipant(ctx context.Context, id uuid.UUID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ConversationRepositoryMock) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var out []models.Conversation
	if val := args.Get(0); val != nil {
		out = val.([]models.Conversation)
	}
	return out, args.Error(1)
}

func (m *ConversationRepositoryMock) ListInbox(ctx context.Context, userID uuid.UUID) ([]models.InboxRow, error) {
	args := m.Called(ctx, userID)
	var out []models.InboxRow
	if val := args.Get(0); val != nil {
		out = val.([]models.InboxRow)
	}
	return out, args.Error(1)
}

func (m *ConversationRepositoryMock) SetStatus(ctx context.Context, id uuid.UUID, status models.ConversationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *ConversationRepositoryMock) TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *ConversationRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MessageRepositoryMock) ListForConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var out []models.Message
	if val := args.Get(0); val != nil {
		out = val.([]models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, conversationID uuid.UUID, readerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) DeleteForConversation(ctx context.Context, conversationID uuid.UUID) error {
	return m.Called(ctx, conversationID).Error(0)
}

type BlockRepositoryMock struct {
	mock.Mock
}

func (m *BlockRepositoryMock) Create(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	return m.Called(ctx, blockerID, blockedID).Error(0)
}

func (m *BlockRepositoryMock) Delete(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	return m.Called(ctx, blockerID, blockedID).Error(0)
}

func (m *BlockRepositoryMock) ExistsBetween(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *BlockRepositoryMock) ListByBlocker(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error) {
	args := m.Called(ctx, blockerID)
	var out []models.Block
	if val := args.Get(0); val != nil {
		out = val.([]models.Block)
	}
	return out, args.Error(1)
}

func (m *BlockRepositoryMock) CreateReport(ctx context.Context, report models.Report) (models.Report, error) {
	args := m.Called(ctx, report)
	return args.Get(0).(models.Report), args.Error(1)
}

func (m *BlockRepositoryMock) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type GatheringRepositoryMock struct {
	mock.Mock
}

func (m *GatheringRepositoryMock) CreateGathering(ctx context.Context, ownerID uuid.UUID, name, date string, memberIDs []uuid.UUID) (models.Gathering, error) {
	args := m.Called(ctx, ownerID, name, date, memberIDs)
	return args.Get(0).(models.Gathering), args.Error(1)
}

func (m *GatheringRepositoryMock) ListGatheringsForUser(ctx context.Context, userID uuid.UUID) ([]models.Gathering, error) {
	args := m.Called(ctx, userID)
	var out []models.Gathering
	if val := args.Get(0); val != nil {
		out = val.([]models.Gathering)
	}
	return out, args.Error(1)
}

func (m *GatheringRepositoryMock) ListMembers(ctx context.Context, gatheringID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, gatheringID)
	var out []uuid.UUID
	if val := args.Get(0); val != nil {
		out = val.([]uuid.UUID)
	}
	return out, args.Error(1)
}

func (m *GatheringRepositoryMock) IsMember(ctx context.Context, gatheringID uuid.UUID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, gatheringID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *GatheringRepositoryMock) GetGathering(ctx context.Context, gatheringID uuid.UUID) (models.Gathering, error) {
	args := m.Called(ctx, gatheringID)
	return args.Get(0).(models.Gathering), args.Error(1)
}

func (m *GatheringRepositoryMock) RemoveMemberFromOthers(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *GatheringRepositoryMock) DeleteOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
var _ repositories.ConnectionRepository = (*ConnectionRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.BlockRepository = (*BlockRepositoryMock)(nil)
var _ repositories.GatheringRepository = (*GatheringRepositoryMock)(nil)
