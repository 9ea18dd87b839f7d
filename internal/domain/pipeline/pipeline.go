package pipeline

import "context"

// Emitter is how a transform hands results downstream.
type Emitter interface {
	// Push forwards a file to the next stage.
	Push(f *File)

	// Error reports a per-file error. It does not stop the pipeline.
	Error(err error)
}

// Transform processes one file. Implementations must call Push for every
// file they want forwarded; a file that is not pushed is dropped.
type Transform interface {
	Transform(f *File, out Emitter)
}

// TransformFunc adapts a function to the Transform interface.
type TransformFunc func(f *File, out Emitter)

// Transform calls fn(f, out).
func (fn TransformFunc) Transform(f *File, out Emitter) {
	fn(f, out)
}

// emitter routes pushes to the next stage and errors to the sink.
type emitter struct {
	push func(*File)
	err  func(error)
}

func (e emitter) Push(f *File)    { e.push(f) }
func (e emitter) Error(err error) { e.err(err) }

// Pipeline is an ordered chain of transforms. Each file runs through the
// whole chain before the next file starts.
type Pipeline struct {
	stages []Transform
}

// New builds a pipeline from transforms, applied in order.
func New(stages ...Transform) *Pipeline {
	return &Pipeline{stages: stages}
}

// Pipe returns a new pipeline with extra stages appended.
func (p *Pipeline) Pipe(stages ...Transform) *Pipeline {
	next := make([]Transform, 0, len(p.stages)+len(stages))
	next = append(next, p.stages...)
	next = append(next, stages...)
	return &Pipeline{stages: next}
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// feed pushes f into stage i; files leaving the last stage go to out.
func (p *Pipeline) feed(i int, f *File, out func(*File), errs func(error)) {
	if i >= len(p.stages) {
		out(f)
		return
	}
	p.stages[i].Transform(f, emitter{
		push: func(next *File) { p.feed(i+1, next, out, errs) },
		err:  errs,
	})
}

// Process runs a single file through the chain.
func (p *Pipeline) Process(f *File, out func(*File), errs func(error)) {
	p.feed(0, f, out, errs)
}

// Collect runs files through the pipeline synchronously and returns every
// file that reached the end and every error emitted along the way, in order.
func (p *Pipeline) Collect(files []*File) ([]*File, []error) {
	var (
		outFiles []*File
		outErrs  []error
	)
	for _, f := range files {
		p.feed(0, f,
			func(done *File) { outFiles = append(outFiles, done) },
			func(err error) { outErrs = append(outErrs, err) },
		)
	}
	return outFiles, outErrs
}

// Run drives the pipeline from a channel of files. Files are processed one
// at a time on a single goroutine. Both output channels close once src is
// drained or ctx is cancelled; callers must drain both.
func (p *Pipeline) Run(ctx context.Context, src <-chan *File) (<-chan *File, <-chan error) {
	files := make(chan *File)
	errs := make(chan error)

	go func() {
		defer close(files)
		defer close(errs)

		send := func(f *File) {
			select {
			case files <- f:
			case <-ctx.Done():
			}
		}
		report := func(err error) {
			select {
			case errs <- err:
			case <-ctx.Done():
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case f, ok := <-src:
				if !ok {
					return
				}
				p.feed(0, f, send, report)
			}
		}
	}()

	return files, errs
}

// Drain consumes the channels returned by Run until both close.
func Drain(files <-chan *File, errs <-chan error) ([]*File, []error) {
	var (
		outFiles []*File
		outErrs  []error
	)
	for files != nil || errs != nil {
		select {
		case f, ok := <-files:
			if !ok {
				files = nil
				continue
			}
			outFiles = append(outFiles, f)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			outErrs = append(outErrs, err)
		}
	}
	return outFiles, outErrs
}
