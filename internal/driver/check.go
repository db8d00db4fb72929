package driver

import (
	"fmt"

	"rivet/internal/ast"
	"rivet/internal/diag"
	"rivet/internal/observ"
	"rivet/internal/parser"
	"rivet/internal/source"
	"rivet/internal/verify"
)

type CheckResult struct {
	FileSet *source.FileSet
	File    *source.File
	Builder *ast.Builder
	FileID  ast.FileID
	Bag     *diag.Bag
	Timing  observ.Report
}

// Check прогоняет один файл через полный конвейер: parse + verify.
func Check(path string, maxDiagnostics int) (*CheckResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return checkLoaded(fs, fileID, maxDiagnostics)
}

func checkLoaded(fs *source.FileSet, fileID source.FileID, maxDiagnostics int) (*CheckResult, error) {
	file := fs.Get(fileID)
	if file == nil {
		return nil, fmt.Errorf("driver: unknown file id %d", fileID)
	}
	bag := diag.NewBag(maxDiagnostics)
	timer := observ.NewTimer()

	parsePhase := timer.Begin("parse")
	builder := ast.NewBuilder(ast.Hints{}, nil)
	p := parser.New(file, builder, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	astFile := p.ParseFile()
	timer.End(parsePhase, file.Path)

	// верификация по сломанному AST даёт каскад ложных ошибок
	if !bag.HasErrors() {
		checkPhase := timer.Begin("check")
		verify.Check(builder, astFile, diag.BagReporter{Bag: bag})
		timer.End(checkPhase, "")
	}

	bag.Sort()
	return &CheckResult{
		FileSet: fs,
		File:    file,
		Builder: builder,
		FileID:  astFile,
		Bag:     bag,
		Timing:  timer.Report(),
	}, nil
}
