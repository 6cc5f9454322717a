package session

import (
	"io"
	"os"
	"os/exec"
	"sync"

	creackpty "github.com/creack/pty"
)

// ptyIO is the duplex byte channel a Session drives. The real
// implementation wraps a kernel PTY; tests substitute a scriptable fake.
type ptyIO interface {
	// write queues bytes to the child's stdin.
	write(p []byte) error

	// resize propagates a new window size (SIGWINCH to the child).
	resize(cols, rows int) error

	// onData registers the chunk handler. Chunks read before registration
	// are buffered and flushed to the handler in arrival order, so no
	// early output is lost.
	onData(fn func(p []byte))

	// kill terminates the child and releases file descriptors.
	kill()
}

// ptyProc runs a child process inside a kernel pseudo-terminal.
type ptyProc struct {
	cmd  *exec.Cmd
	ptmx *os.File

	mu      sync.Mutex
	handler func(p []byte)
	pending [][]byte
	eof     bool

	killOnce sync.Once
}

// spawnPTY starts command/args inside a new PTY sized to cols x rows.
func spawnPTY(command string, args []string, cols, rows int, cwd string, env []string) (*ptyProc, error) {
	cmd := exec.Command(command, args...)
	cmd.Dir = cwd
	cmd.Env = env

	ptmx, err := creackpty.StartWithSize(cmd, &creackpty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
	if err != nil {
		return nil, err
	}

	p := &ptyProc{cmd: cmd, ptmx: ptmx}
	go p.readPump()
	go func() {
		// Reap the child so it never lingers as a zombie.
		_ = cmd.Wait()
	}()
	return p, nil
}

// readPump reads chunks from the PTY until EOF and hands them to the
// handler. Delivery holds the mutex so chunk order is preserved against a
// concurrent onData registration flushing the pending buffer.
func (p *ptyProc) readPump() {
	buf := make([]byte, 4096)
	for {
		n, err := p.ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			p.deliver(chunk)
		}
		if err != nil {
			p.mu.Lock()
			p.eof = true
			p.mu.Unlock()
			return
		}
	}
}

func (p *ptyProc) deliver(chunk []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handler == nil {
		p.pending = append(p.pending, chunk)
		return
	}
	p.handler(chunk)
}

func (p *ptyProc) onData(fn func(p []byte)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handler = fn
	for _, chunk := range p.pending {
		fn(chunk)
	}
	p.pending = nil
}

func (p *ptyProc) write(b []byte) error {
	p.mu.Lock()
	exited := p.eof
	p.mu.Unlock()
	if exited {
		return &WriteError{Err: io.ErrClosedPipe}
	}
	if _, err := p.ptmx.Write(b); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

func (p *ptyProc) resize(cols, rows int) error {
	return creackpty.Setsize(p.ptmx, &creackpty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
}

func (p *ptyProc) kill() {
	p.killOnce.Do(func() {
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		_ = p.ptmx.Close()
	})
}
