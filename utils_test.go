package dispatch

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
)

// ------Enums------//
const (
	Unidentified     Identifier = ""
	TestCommand1     Identifier = "test-command-1"
	TestCommand2     Identifier = "test-command-2"
	TestLiteral      Identifier = "test-literal"
	TestErrorCommand Identifier = "test-error"
	TestCancel       Identifier = "cancel"
	TestSubscribe    Identifier = "subscribe"
)

var errCommandFailed = errors.New("command failed")

//------Commands------//

type testCommand struct {
	identifier Identifier
}

func (cmd *testCommand) Identifier() Identifier {
	return cmd.identifier
}

type testCommand1 struct{}

func (*testCommand1) Identifier() Identifier {
	return TestCommand1
}

type testCommand2 struct{}

func (*testCommand2) Identifier() Identifier {
	return TestCommand2
}

type testCommand3 string

func (testCommand3) Identifier() Identifier {
	return TestLiteral
}

type testCommandError struct{}

func (*testCommandError) Identifier() Identifier {
	return TestErrorCommand
}

type testCancel struct {
	subscription string
}

func (testCancel) Identifier() Identifier {
	return TestCancel
}

type testSubscribe struct {
	user string
	plan string
}

func (testSubscribe) Identifier() Identifier {
	return TestSubscribe
}

//------Handlers------//

type testHandler struct {
	name string
}

func (hdl *testHandler) Handle(cmd Command) (data any, err error) {
	fibonacci(100)
	return hdl.name, nil
}

type testErrorHandler struct{}

func (hdl *testErrorHandler) Handle(cmd Command) (data any, err error) {
	return "partial", errCommandFailed
}

type testAsyncHandler struct {
	wg *sync.WaitGroup
}

func (hdl *testAsyncHandler) Handle(cmd Command) (data any, err error) {
	fibonacci(1000)
	hdl.wg.Done()
	return
}

// testRecordingHandler remembers the commands it received.
type testRecordingHandler struct {
	sync.Mutex
	name string
	cmds []Command
}

func (hdl *testRecordingHandler) Handle(cmd Command) (data any, err error) {
	hdl.Lock()
	hdl.cmds = append(hdl.cmds, cmd)
	hdl.Unlock()
	return fmt.Sprintf("%s:%v", hdl.name, cmd), nil
}

func (hdl *testRecordingHandler) received() []Command {
	hdl.Lock()
	defer hdl.Unlock()
	return append([]Command(nil), hdl.cmds...)
}

// testBlockingHandler waits for release before returning.
type testBlockingHandler struct {
	release chan struct{}
}

func (hdl *testBlockingHandler) Handle(cmd Command) (data any, err error) {
	<-hdl.release
	return cmd.Identifier(), nil
}

//------Error Handlers------//

type storeErrorsHandler struct {
	sync.Mutex
	errs map[Identifier]error
}

func newStoreErrorsHandler() *storeErrorsHandler {
	return &storeErrorsHandler{errs: make(map[Identifier]error)}
}

func (hdl *storeErrorsHandler) Handle(cmd Command, err error) {
	hdl.Lock()
	hdl.errs[hdl.key(cmd)] = err
	hdl.Unlock()
}

func (hdl *storeErrorsHandler) Error(cmd Command) error {
	hdl.Lock()
	defer hdl.Unlock()
	if err, hasError := hdl.errs[hdl.key(cmd)]; hasError {
		return err
	}
	return nil
}

func (hdl *storeErrorsHandler) key(cmd Command) Identifier {
	if cmd == nil {
		return Unidentified
	}
	return cmd.Identifier()
}

// ------Middlewares------//

type testLoggerMiddleware struct {
	sync.Mutex
	logs   []string
	testId string
}

func newTestLoggerMiddleware(testId string) *testLoggerMiddleware {
	return &testLoggerMiddleware{
		testId: testId,
	}
}

func (mdl *testLoggerMiddleware) HandleInward(cmd Command) error {
	mdl.log(fmt.Sprintf("%s|inward|%s", mdl.testId, cmd.Identifier()))
	return nil
}

func (mdl *testLoggerMiddleware) HandleOutward(cmd Command, data any, err error) (any, error) {
	mdl.log(fmt.Sprintf("%s|outward|%s", mdl.testId, cmd.Identifier()))
	return data, err
}

func (mdl *testLoggerMiddleware) log(message string) {
	mdl.Lock()
	mdl.logs = append(mdl.logs, message)
	mdl.Unlock()
}

func (mdl *testLoggerMiddleware) entries() []string {
	mdl.Lock()
	defer mdl.Unlock()
	return append([]string(nil), mdl.logs...)
}

type testErrorMiddleware struct {
	inwardFailure  bool
	outwardFailure bool
}

func (mdl *testErrorMiddleware) HandleInward(cmd Command) error {
	if mdl.inwardFailure {
		return errors.New("inward middleware failure")
	}
	return nil
}

func (mdl *testErrorMiddleware) HandleOutward(cmd Command, data any, err error) (any, error) {
	if mdl.outwardFailure {
		return nil, errors.New("outward middleware failure")
	}
	return data, err
}

//------General------//

func mustRegistry(bindings map[Identifier]Handler) *Registry {
	reg := NewRegistry()
	for id, hdl := range bindings {
		if err := reg.Register(id, hdl); err != nil {
			panic(err)
		}
	}
	return reg
}

func fibonacci(n uint) *big.Int {
	if n < 2 {
		return big.NewInt(int64(n))
	}
	a, b := big.NewInt(0), big.NewInt(1)
	for n--; n > 0; n-- {
		a.Add(a, b)
		a, b = b, a
	}

	return b
}
