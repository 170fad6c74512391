package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"Backend-NetZero/src/models"
	"Backend-NetZero/src/portal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testInterval = 15 * time.Millisecond

type fakeMessagingGateway struct {
	mu sync.Mutex

	convs   map[string]*models.Conversation
	getErr  error
	sendErr error

	// getGate holds a fetch for one conversation in flight until released;
	// getEntered reports that the fetch reached the gate
	getGate    map[string]chan struct{}
	getEntered chan string

	getCalls  map[string]int
	sendCalls int
	created   int
}

func newFakeMessaging() *fakeMessagingGateway {
	return &fakeMessagingGateway{
		convs:    map[string]*models.Conversation{},
		getGate:  map[string]chan struct{}{},
		getCalls: map[string]int{},
	}
}

func (f *fakeMessagingGateway) addConversation(supplier, admin primitive.ObjectID) *models.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv := &models.Conversation{ID: primitive.NewObjectID(), SupplierID: supplier, AdminID: admin}
	f.convs[conv.ID.Hex()] = conv
	return conv
}

func (f *fakeMessagingGateway) fetches(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls[id]
}

func (f *fakeMessagingGateway) setGetErr(err error) {
	f.mu.Lock()
	f.getErr = err
	f.mu.Unlock()
}

func (f *fakeMessagingGateway) ListConversations(ctx context.Context, s gateway.Session) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Conversation{}
	for _, c := range f.convs {
		out = append(out, *c)
	}
	return out, nil
}

// GetConversation marks the reader's unread messages read, same side effect
// as the real backend.
func (f *fakeMessagingGateway) GetConversation(ctx context.Context, s gateway.Session, conversationID string) (*models.Conversation, error) {
	f.mu.Lock()
	gate := f.getGate[conversationID]
	f.mu.Unlock()
	if gate != nil {
		f.getEntered <- conversationID
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls[conversationID]++
	if f.getErr != nil {
		return nil, f.getErr
	}
	conv, ok := f.convs[conversationID]
	if !ok {
		return nil, &gateway.Error{Kind: gateway.KindNotFound, Op: "get conversation"}
	}
	reader, _ := primitive.ObjectIDFromHex(s.UserID)
	for i := range conv.Messages {
		if conv.Messages[i].Sender != reader {
			conv.Messages[i].Read = true
		}
	}
	snapshot := *conv
	snapshot.Messages = append([]models.Message(nil), conv.Messages...)
	return &snapshot, nil
}

func (f *fakeMessagingGateway) CreateConversation(ctx context.Context, s gateway.Session, counterpartID string) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	counterpart, _ := primitive.ObjectIDFromHex(counterpartID)
	self, _ := primitive.ObjectIDFromHex(s.UserID)
	conv := &models.Conversation{ID: primitive.NewObjectID(), SupplierID: self, AdminID: counterpart}
	if s.Role == models.RoleAdmin {
		conv.SupplierID, conv.AdminID = counterpart, self
	}
	f.convs[conv.ID.Hex()] = conv
	return conv, nil
}

func (f *fakeMessagingGateway) SendMessage(ctx context.Context, s gateway.Session, conversationID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return f.sendErr
	}
	conv, ok := f.convs[conversationID]
	if !ok {
		return &gateway.Error{Kind: gateway.KindNotFound, Op: "send message"}
	}
	sender, _ := primitive.ObjectIDFromHex(s.UserID)
	conv.Messages = append(conv.Messages, models.Message{
		ID: primitive.NewObjectID(), Sender: sender, Content: content, Timestamp: time.Now(),
	})
	return nil
}

func (f *fakeMessagingGateway) ListCounterparts(ctx context.Context, s gateway.Session) ([]models.User, error) {
	return nil, nil
}

func supplierSession(id primitive.ObjectID) gateway.Session {
	return gateway.Session{Token: "tok", UserID: id.Hex(), Role: models.RoleSupplier}
}

func TestSelectStartsCadence(t *testing.T) {
	supplier := primitive.NewObjectID()
	gw := newFakeMessaging()
	conv := gw.addConversation(supplier, primitive.NewObjectID())

	p := NewWithInterval(gw, supplierSession(supplier), testInterval)
	defer p.Close()

	p.Select(conv.ID.Hex())

	// fetch ทันทีหนึ่งครั้ง แล้วเข้ารอบ polling ต่อ
	require.Eventually(t, func() bool { return gw.fetches(conv.ID.Hex()) >= 3 },
		2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateActive, p.State())
	assert.Equal(t, conv.ID.Hex(), p.Selected())
}

func TestFetchMarksCounterpartMessagesRead(t *testing.T) {
	supplier := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	gw := newFakeMessaging()
	conv := gw.addConversation(supplier, admin)
	gw.mu.Lock()
	conv.Messages = append(conv.Messages, models.Message{ID: primitive.NewObjectID(), Sender: admin, Content: "hello"})
	gw.mu.Unlock()

	p := NewWithInterval(gw, supplierSession(supplier), testInterval)
	defer p.Close()
	p.Select(conv.ID.Hex())

	require.Eventually(t, func() bool { return len(p.Messages()) == 1 },
		2*time.Second, 5*time.Millisecond)
	assert.True(t, p.Messages()[0].Read)
}

func TestSwitchingConversationStopsOldCadence(t *testing.T) {
	supplier := primitive.NewObjectID()
	gw := newFakeMessaging()
	a := gw.addConversation(supplier, primitive.NewObjectID())
	b := gw.addConversation(supplier, primitive.NewObjectID())

	p := NewWithInterval(gw, supplierSession(supplier), testInterval)
	defer p.Close()

	p.Select(a.ID.Hex())
	require.Eventually(t, func() bool { return gw.fetches(a.ID.Hex()) >= 2 },
		2*time.Second, 5*time.Millisecond)

	p.Select(b.ID.Hex())
	require.Eventually(t, func() bool { return gw.fetches(b.ID.Hex()) >= 2 },
		2*time.Second, 5*time.Millisecond)

	// cadence เดิมต้องหยุดสนิทหลังสลับห้อง
	before := gw.fetches(a.ID.Hex())
	time.Sleep(5 * testInterval)
	assert.Equal(t, before, gw.fetches(a.ID.Hex()))
	assert.Equal(t, b.ID.Hex(), p.Selected())
}

func TestLateResponseForOldSelectionDiscarded(t *testing.T) {
	supplier := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	gw := newFakeMessaging()
	a := gw.addConversation(supplier, admin)
	b := gw.addConversation(supplier, primitive.NewObjectID())
	gw.mu.Lock()
	a.Messages = append(a.Messages, models.Message{ID: primitive.NewObjectID(), Sender: admin, Content: "from the old room"})
	gw.mu.Unlock()

	release := make(chan struct{})
	gw.mu.Lock()
	gw.getGate[a.ID.Hex()] = release
	gw.getEntered = make(chan string, 1)
	gw.mu.Unlock()

	// tick ไกลๆ ให้เหลือแค่ immediate fetch ของแต่ละ selection
	// จะได้ไม่มี fetch รอบใหม่ของห้อง b มากลบผลของ response ค้าง
	p := NewWithInterval(gw, supplierSession(supplier), time.Minute)
	defer p.Close()

	// fetch ของห้อง a ค้างกลางทาง แล้ว user สลับไปห้อง b
	p.Select(a.ID.Hex())
	require.Equal(t, a.ID.Hex(), <-gw.getEntered)
	p.Select(b.ID.Hex())
	require.Eventually(t, func() bool {
		conv := p.Conversation()
		return conv != nil && conv.ID == b.ID
	}, 2*time.Second, 5*time.Millisecond)

	// คำตอบของห้อง a เพิ่งมาถึง ต้องถูกทิ้ง ไม่ทับ snapshot ของห้อง b
	close(release)
	time.Sleep(3 * testInterval)
	conv := p.Conversation()
	require.NotNil(t, conv)
	assert.Equal(t, b.ID, conv.ID)
	assert.Empty(t, p.Messages())
	assert.Equal(t, b.ID.Hex(), p.Selected())
	assert.Equal(t, StateActive, p.State())
}

func TestNetworkFailureDegrades(t *testing.T) {
	supplier := primitive.NewObjectID()
	gw := newFakeMessaging()
	conv := gw.addConversation(supplier, primitive.NewObjectID())
	gw.setGetErr(&gateway.Error{Kind: gateway.KindNetwork, Op: "get conversation"})

	p := NewWithInterval(gw, supplierSession(supplier), testInterval)
	defer p.Close()
	p.Select(conv.ID.Hex())

	require.Eventually(t, func() bool { return p.State() == StateDegraded },
		2*time.Second, 5*time.Millisecond)
	assert.True(t, gateway.IsNetwork(p.LastErr()))

	// degraded แล้วห้ามมี tick ยิงต่อ
	count := gw.fetches(conv.ID.Hex())
	time.Sleep(5 * testInterval)
	assert.Equal(t, count, gw.fetches(conv.ID.Hex()))

	// ส่งข้อความถูกปัดตกตั้งแต่ฝั่ง client
	err := p.SendMessage(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrDegraded)
	gw.mu.Lock()
	sends := gw.sendCalls
	gw.mu.Unlock()
	assert.Zero(t, sends)
}

func TestBusinessErrorKeepsPolling(t *testing.T) {
	supplier := primitive.NewObjectID()
	gw := newFakeMessaging()
	conv := gw.addConversation(supplier, primitive.NewObjectID())
	gw.setGetErr(&gateway.Error{Kind: gateway.KindServerRejected, Op: "get conversation", Message: "nope"})

	p := NewWithInterval(gw, supplierSession(supplier), testInterval)
	defer p.Close()
	p.Select(conv.ID.Hex())

	require.Eventually(t, func() bool { return p.LastErr() != nil },
		2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateActive, p.State())

	start := gw.fetches(conv.ID.Hex())
	require.Eventually(t, func() bool { return gw.fetches(conv.ID.Hex()) > start },
		2*time.Second, 5*time.Millisecond)
}

func TestSendMessage(t *testing.T) {
	t.Run("LocalRejections", func(t *testing.T) {
		gw := newFakeMessaging()
		p := NewWithInterval(gw, supplierSession(primitive.NewObjectID()), testInterval)
		defer p.Close()

		assert.ErrorIs(t, p.SendMessage(context.Background(), "   "), ErrEmptyMessage)
		assert.ErrorIs(t, p.SendMessage(context.Background(), "hi"), ErrNoConversation)
		gw.mu.Lock()
		sends := gw.sendCalls
		gw.mu.Unlock()
		assert.Zero(t, sends)
	})

	t.Run("PostThenImmediateRefetch", func(t *testing.T) {
		supplier := primitive.NewObjectID()
		gw := newFakeMessaging()
		conv := gw.addConversation(supplier, primitive.NewObjectID())

		p := NewWithInterval(gw, supplierSession(supplier), time.Minute) // tick ไกลๆ ให้เห็นว่า refetch มาจาก send
		defer p.Close()
		p.Select(conv.ID.Hex())
		require.Eventually(t, func() bool { return p.Conversation() != nil },
			2*time.Second, 5*time.Millisecond)

		require.NoError(t, p.SendMessage(context.Background(), "sawasdee"))
		msgs := p.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "sawasdee", msgs[0].Content)
	})
}

func TestStartConversation(t *testing.T) {
	t.Run("ReusesExistingThread", func(t *testing.T) {
		supplier := primitive.NewObjectID()
		admin := primitive.NewObjectID()
		gw := newFakeMessaging()
		existing := gw.addConversation(supplier, admin)

		p := NewWithInterval(gw, supplierSession(supplier), testInterval)
		defer p.Close()

		id, err := p.StartConversation(context.Background(), admin.Hex())
		require.NoError(t, err)
		assert.Equal(t, existing.ID.Hex(), id)
		gw.mu.Lock()
		created := gw.created
		gw.mu.Unlock()
		assert.Zero(t, created)
		assert.Equal(t, id, p.Selected())
	})

	t.Run("CreatesWhenNoneExists", func(t *testing.T) {
		supplier := primitive.NewObjectID()
		gw := newFakeMessaging()

		p := NewWithInterval(gw, supplierSession(supplier), testInterval)
		defer p.Close()

		id, err := p.StartConversation(context.Background(), primitive.NewObjectID().Hex())
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		gw.mu.Lock()
		created := gw.created
		gw.mu.Unlock()
		assert.Equal(t, 1, created)
		require.Eventually(t, func() bool { return p.State() == StateActive && p.Conversation() != nil },
			2*time.Second, 5*time.Millisecond)
	})
}

func TestRetryFromDegraded(t *testing.T) {
	supplier := primitive.NewObjectID()
	gw := newFakeMessaging()
	conv := gw.addConversation(supplier, primitive.NewObjectID())
	gw.setGetErr(&gateway.Error{Kind: gateway.KindNetwork, Op: "get conversation"})

	p := NewWithInterval(gw, supplierSession(supplier), testInterval)
	defer p.Close()
	p.Select(conv.ID.Hex())
	require.Eventually(t, func() bool { return p.State() == StateDegraded },
		2*time.Second, 5*time.Millisecond)

	// backend กลับมาแล้ว retry ด้วยมือ
	gw.setGetErr(nil)
	require.NoError(t, p.Retry())
	require.Eventually(t, func() bool { return p.State() == StateActive },
		2*time.Second, 5*time.Millisecond)
	assert.NoError(t, p.LastErr())

	t.Run("RetryWithoutSelection", func(t *testing.T) {
		idle := NewWithInterval(newFakeMessaging(), supplierSession(primitive.NewObjectID()), testInterval)
		assert.ErrorIs(t, idle.Retry(), ErrNoConversation)
	})
}

func TestClose(t *testing.T) {
	supplier := primitive.NewObjectID()
	gw := newFakeMessaging()
	conv := gw.addConversation(supplier, primitive.NewObjectID())

	p := NewWithInterval(gw, supplierSession(supplier), testInterval)
	p.Select(conv.ID.Hex())
	require.Eventually(t, func() bool { return gw.fetches(conv.ID.Hex()) >= 1 },
		2*time.Second, 5*time.Millisecond)

	p.Close()
	assert.Equal(t, StateIdle, p.State())
	assert.Empty(t, p.Selected())
	assert.Nil(t, p.Conversation())

	count := gw.fetches(conv.ID.Hex())
	time.Sleep(5 * testInterval)
	assert.Equal(t, count, gw.fetches(conv.ID.Hex()))
}
