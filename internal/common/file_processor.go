package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/utils"
)

// Posting is one job posting read from disk
type Posting struct {
	ID   string
	Path string
	Text string
}

// FileProcessor handles common file operations
type FileProcessor struct {
	logger  *errors.Logger
	maxSize int64
}

// NewFileProcessor creates a new file processor instance. A maxSize of zero
// disables the size check.
func NewFileProcessor(logger *errors.Logger, maxSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxSize: maxSize}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	var reader io.Reader = file
	if fp.maxSize > 0 {
		reader = io.LimitReader(file, fp.maxSize+1)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	if fp.maxSize > 0 && int64(len(content)) > fp.maxSize {
		return "", errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("File %s exceeds the maximum size of %s", filename, utils.FormatFileSize(fp.maxSize)), nil)
	}

	return string(content), nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ReadPosting reads one posting file. HTML files, by extension or content,
// are reduced to their readable text.
func (fp *FileProcessor) ReadPosting(filename string) (Posting, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return Posting{}, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	if !utils.IsPostingFile(filename) {
		fp.logger.Warn("File may not be a job posting", "filename", filename)
	}

	content, err := fp.ReadFile(filename)
	if err != nil {
		return Posting{}, err // Error already wrapped by ReadFile
	}

	if utils.IsHTMLFile(filename) || IsHTML(content) {
		text, err := ExtractPostingText(content)
		if err != nil {
			return Posting{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("Cannot parse HTML posting: %s", filename), err)
		}
		fp.logger.Debug("Extracted posting text from HTML",
			"filename", filename, "html_chars", len(content), "text_chars", len(text))
		content = text
	}

	return Posting{ID: utils.PostingID(filename), Path: filename, Text: content}, nil
}

// ReadPostings reads every path given. Directories contribute the posting
// files they contain, in name order.
func (fp *FileProcessor) ReadPostings(paths ...string) ([]Posting, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			found, err := utils.ListPostingFiles(path)
			if err != nil {
				return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
					fmt.Sprintf("Cannot list directory: %s", path), err)
			}
			files = append(files, found...)
			continue
		}
		files = append(files, path)
	}

	postings := make([]Posting, 0, len(files))
	for _, file := range files {
		posting, err := fp.ReadPosting(file)
		if err != nil {
			return nil, err
		}
		postings = append(postings, posting)
	}
	return postings, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
